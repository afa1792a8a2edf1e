package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/jobradar/internal/cvparse"
	"github.com/jimezsa/jobradar/internal/models"
	"github.com/jimezsa/jobradar/internal/profile"
)

type ProfileCmd struct {
	Create  ProfileCreateCmd  `cmd:"" help:"Create a profile; CV text is parsed into skills, experience, languages and sectors."`
	Show    ProfileShowCmd    `cmd:"" help:"Print a profile."`
	Update  ProfileUpdateCmd  `cmd:"" help:"Update the given fields of a profile."`
	Delete  ProfileDeleteCmd  `cmd:"" help:"Delete a profile."`
	ParseCV ProfileParseCVCmd `cmd:"" name:"parse-cv" help:"Extract features from a CV text file."`
}

// ProfileFields are the editable profile fields. Zero values mean unset.
type ProfileFields struct {
	FullName   string   `name:"full-name" help:"Full name."`
	Email      string   `help:"Email address."`
	Phone      string   `help:"Phone number."`
	Location   string   `help:"Home location."`
	CV         string   `name:"cv" help:"Path to a plain-text CV (- for stdin)."`
	Contracts  []string `help:"Preferred contract types." sep:","`
	Remote     string   `help:"Preferred remote mode: remote, hybrid or onsite." enum:",remote,hybrid,onsite" default:""`
	SalaryMin  float64  `name:"salary-min" help:"Minimum yearly salary."`
	Countries  []string `help:"Preferred countries." sep:","`
	Categories []string `help:"Preferred job categories." sep:","`
}

type ProfileCreateCmd struct {
	UserID string `arg:"" name:"user-id" help:"User id."`
	ProfileFields
}

type ProfileShowCmd struct {
	UserID string `arg:"" name:"user-id" help:"User id."`
}

type ProfileUpdateCmd struct {
	UserID string `arg:"" name:"user-id" help:"User id."`
	ProfileFields
}

type ProfileDeleteCmd struct {
	UserID string `arg:"" name:"user-id" help:"User id."`
}

type ProfileParseCVCmd struct {
	File  string `arg:"" help:"Plain-text CV file (- for stdin)."`
	Apply string `help:"Store the CV and its features on this user's profile."`
}

func (c *ProfileCreateCmd) Run(ctx *Context) error {
	profiles, err := ctx.openProfiles()
	if err != nil {
		return err
	}
	patch, err := c.ProfileFields.patch(os.Stdin)
	if err != nil {
		return err
	}

	p := models.Profile{UserID: c.UserID}
	patch.Apply(&p)
	created, err := profiles.Create(p)
	if err != nil {
		return err
	}
	return printProfile(ctx, created)
}

func (c *ProfileShowCmd) Run(ctx *Context) error {
	profiles, err := ctx.openProfiles()
	if err != nil {
		return err
	}
	p, err := profiles.Get(c.UserID)
	if err != nil {
		return err
	}
	return printProfile(ctx, p)
}

func (c *ProfileUpdateCmd) Run(ctx *Context) error {
	profiles, err := ctx.openProfiles()
	if err != nil {
		return err
	}
	patch, err := c.ProfileFields.patch(os.Stdin)
	if err != nil {
		return err
	}
	if patch.Empty() {
		return fmt.Errorf("nothing to update")
	}
	updated, err := profiles.Update(c.UserID, patch)
	if err != nil {
		return err
	}
	return printProfile(ctx, updated)
}

func (c *ProfileDeleteCmd) Run(ctx *Context) error {
	profiles, err := ctx.openProfiles()
	if err != nil {
		return err
	}
	if err := profiles.Delete(c.UserID); err != nil {
		return err
	}
	ctx.UI.Successf("Deleted profile %s", c.UserID)
	return nil
}

func (c *ProfileParseCVCmd) Run(ctx *Context) error {
	text, err := readText(c.File, os.Stdin)
	if err != nil {
		return err
	}

	if c.Apply != "" {
		profiles, err := ctx.openProfiles()
		if err != nil {
			return err
		}
		if _, err := profiles.Update(c.Apply, models.ProfilePatch{CVText: &text}); err != nil {
			return err
		}
	}

	features := cvparse.Extract(text)
	if ctx.JSONOutput {
		return writeJSON(ctx.Out, features)
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "skills\t%s\n", orNone(strings.Join(features.Skills, ", ")))
	fmt.Fprintf(tw, "experience_years\t%s\n", intText(features.ExperienceYears))
	fmt.Fprintf(tw, "experience_level\t%s\n", orNone(features.ExperienceLevel))
	fmt.Fprintf(tw, "languages\t%s\n", orNone(strings.Join(features.Languages, ", ")))
	fmt.Fprintf(tw, "sectors\t%s\n", orNone(strings.Join(features.Sectors, ", ")))
	return tw.Flush()
}

// patch turns the set flags into a field mask.
func (f ProfileFields) patch(stdin io.Reader) (models.ProfilePatch, error) {
	var patch models.ProfilePatch
	setString := func(dst **string, value string) {
		if value = strings.TrimSpace(value); value != "" {
			*dst = &value
		}
	}
	setList := func(dst **[]string, values []string) {
		if values = trimAll(values); len(values) > 0 {
			*dst = &values
		}
	}

	setString(&patch.FullName, f.FullName)
	setString(&patch.Email, f.Email)
	setString(&patch.Phone, f.Phone)
	setString(&patch.Location, f.Location)
	setList(&patch.PreferredContractTypes, f.Contracts)
	setList(&patch.PreferredCountries, lowerAll(f.Countries))
	setList(&patch.PreferredCategories, f.Categories)

	if f.Remote != "" {
		remote, ok := models.ParseRemoteType(f.Remote)
		if !ok {
			return patch, fmt.Errorf("invalid remote preference %q", f.Remote)
		}
		patch.PreferredRemote = &remote
	}
	if f.SalaryMin > 0 {
		patch.SalaryMin = models.Float(f.SalaryMin)
	}
	if f.CV != "" {
		text, err := readText(f.CV, stdin)
		if err != nil {
			return patch, err
		}
		patch.CVText = &text
	}
	return patch, nil
}

func readText(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read CV %s: %w", path, err)
	}
	return string(data), nil
}

func printProfile(ctx *Context, p models.Profile) error {
	if ctx.JSONOutput {
		return writeJSON(ctx.Out, p)
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"user_id", p.UserID},
		{"id", p.ID},
		{"full_name", p.FullName},
		{"email", p.Email},
		{"location", p.Location},
		{"skills", strings.Join(p.Skills, ", ")},
		{"experience_years", intText(p.ExperienceYears)},
		{"experience_level", p.ExperienceLevel},
		{"languages", strings.Join(p.Languages, ", ")},
		{"sectors", strings.Join(p.Sectors, ", ")},
		{"contracts", strings.Join(p.PreferredContractTypes, ", ")},
		{"remote", string(p.PreferredRemote)},
		{"countries", strings.Join(p.PreferredCountries, ", ")},
		{"summary", profile.CVSummary(p)},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", row[0], orNone(row[1]))
	}
	return tw.Flush()
}

func intText(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func orNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
