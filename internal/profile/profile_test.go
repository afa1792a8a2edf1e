package profile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jimezsa/jobradar/internal/cvparse"
	"github.com/jimezsa/jobradar/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "profiles"))
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	s.newID = func() string { return "00000000-0000-4000-8000-000000000001" }
	return s
}

func TestFileNameSanitizesUserID(t *testing.T) {
	cases := map[string]string{
		"jane@example.com": "jane_example.com.json",
		"a/b\\c":           "a_b_c.json",
		" plain ":          "plain.json",
	}
	for in, want := range cases {
		if got := FileName(in); got != want {
			t.Fatalf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCreateExtractsCVFeatures(t *testing.T) {
	s := newTestStore(t)
	p, err := s.Create(models.Profile{
		UserID: "jane@example.com",
		CVText: "Senior developer, 8 years of experience with Python and Docker. English fluent.",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if p.ID == "" || p.CreatedAt.IsZero() || !p.CreatedAt.Equal(p.UpdatedAt) {
		t.Fatalf("unexpected identity fields: %+v", p)
	}
	if !reflect.DeepEqual(p.Skills, []string{"docker", "python"}) {
		t.Fatalf("Skills = %v", p.Skills)
	}
	if p.ExperienceYears == nil || *p.ExperienceYears != 8 || p.ExperienceLevel != cvparse.LevelSenior {
		t.Fatalf("unexpected experience: %v %q", p.ExperienceYears, p.ExperienceLevel)
	}
	if !reflect.DeepEqual(p.Languages, []string{"Anglais"}) {
		t.Fatalf("Languages = %v", p.Languages)
	}

	if _, err := os.Stat(filepath.Join(s.Dir(), "jane_example.com.json")); err != nil {
		t.Fatalf("expected profile file: %v", err)
	}

	got, err := s.Get("jane@example.com")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.ID != p.ID || !reflect.DeepEqual(got.Skills, p.Skills) {
		t.Fatalf("Get() = %+v, want %+v", got, p)
	}
}

func TestCreateRejectsDuplicates(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Create(models.Profile{UserID: "bob"}); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := s.Create(models.Profile{UserID: "bob"}); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if _, err := s.Create(models.Profile{UserID: "  "}); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}

func TestUpdateAppliesOnlySetFields(t *testing.T) {
	s := newTestStore(t)
	created, err := s.Create(models.Profile{
		UserID:                 "bob",
		FullName:               "Bob",
		PreferredContractTypes: []string{"CDI"},
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	remote := models.RemoteHybrid
	updated, err := s.Update("bob", models.ProfilePatch{PreferredRemote: &remote})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if updated.FullName != "Bob" || !reflect.DeepEqual(updated.PreferredContractTypes, []string{"CDI"}) {
		t.Fatalf("unset fields changed: %+v", updated)
	}
	if updated.PreferredRemote != models.RemoteHybrid {
		t.Fatalf("PreferredRemote = %q, want hybrid", updated.PreferredRemote)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("unexpected timestamps: created %v updated %v", created, updated)
	}

	cv := "Junior Go and Kubernetes engineer"
	reparsed, err := s.Update("bob", models.ProfilePatch{CVText: &cv})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if !reflect.DeepEqual(reparsed.Skills, []string{"kubernetes"}) || reparsed.ExperienceLevel != cvparse.LevelJunior {
		t.Fatalf("CV features not re-extracted: %+v", reparsed)
	}
}

func TestRemotePreferenceIsCanonicalized(t *testing.T) {
	s := newTestStore(t)

	created, err := s.Create(models.Profile{UserID: "dan", PreferredRemote: " Remote"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.PreferredRemote != models.RemoteFull {
		t.Fatalf("PreferredRemote = %q, want %q", created.PreferredRemote, models.RemoteFull)
	}

	if _, err := s.Create(models.Profile{UserID: "erin", PreferredRemote: "anywhere"}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Create(anywhere) error = %v, want ErrInvalid", err)
	}
	if _, err := s.Get("erin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("invalid profile was saved: %v", err)
	}

	bad := models.RemoteType("anywhere")
	if _, err := s.Update("dan", models.ProfilePatch{PreferredRemote: &bad}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Update(anywhere) error = %v, want ErrInvalid", err)
	}
	stored, err := s.Get("dan")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.PreferredRemote != models.RemoteFull {
		t.Fatalf("stored PreferredRemote = %q after rejected update", stored.PreferredRemote)
	}
}

func TestMissingProfile(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() expected ErrNotFound, got %v", err)
	}
	if _, err := s.Update("ghost", models.ProfilePatch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update() expected ErrNotFound, got %v", err)
	}
	if err := s.Delete("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete() expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Create(models.Profile{UserID: "carol"}); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := s.Delete("carol"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get("carol"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected profile to be gone, got %v", err)
	}
}

func TestCVSummary(t *testing.T) {
	years := 5
	p := models.Profile{
		Skills:          []string{"go", "python"},
		ExperienceYears: &years,
		ExperienceLevel: "Mid",
		Sectors:         []string{"Finance"},
		Languages:       []string{"Anglais", "Français"},
		CVText:          strings.Repeat("é", 250),
	}
	want := "Compétences: go, python | 5 ans d'expérience | Niveau: Mid | Secteurs: Finance | Langues: Anglais, Français | " + strings.Repeat("é", 200)
	if got := CVSummary(p); got != want {
		t.Fatalf("CVSummary() = %q, want %q", got, want)
	}

	zero := 0
	if got := CVSummary(models.Profile{ExperienceYears: &zero}); got != "" {
		t.Fatalf("CVSummary() = %q, want empty", got)
	}
}

func TestSearchRequestFillsUnsetPreferences(t *testing.T) {
	p := models.Profile{
		Skills:                 []string{"python"},
		Languages:              []string{"Anglais"},
		PreferredContractTypes: []string{"CDI"},
		PreferredRemote:        models.RemoteFull,
		SalaryMin:              models.Float(50000),
		PreferredCountries:     []string{"fr"},
	}

	req := SearchRequest(p, models.SearchRequest{Keywords: []string{"python"}, Countries: []string{"de"}})
	if req.CVSummary != "Compétences: python | Langues: Anglais" {
		t.Fatalf("CVSummary = %q", req.CVSummary)
	}
	if !reflect.DeepEqual(req.Countries, []string{"de"}) {
		t.Fatalf("explicit countries overridden: %v", req.Countries)
	}
	if !reflect.DeepEqual(req.ContractTypes, []string{"CDI"}) || req.RemotePreference != models.RemoteFull {
		t.Fatalf("preferences not applied: %+v", req)
	}
	if req.SalaryMin == nil || *req.SalaryMin != 50000 {
		t.Fatalf("SalaryMin = %v", req.SalaryMin)
	}
	if !reflect.DeepEqual(req.Languages, []string{"Anglais"}) {
		t.Fatalf("Languages = %v", req.Languages)
	}
}
