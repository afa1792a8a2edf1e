package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jimezsa/jobradar/internal/config"
	"github.com/jimezsa/jobradar/internal/export"
	"github.com/jimezsa/jobradar/internal/models"
	"github.com/jimezsa/jobradar/internal/store"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestResolveFormatRespectsGlobalFlags(t *testing.T) {
	cases := []struct {
		name string
		ctx  *Context
		opts OutputOptions
		want export.Format
	}{
		{name: "json flag", ctx: &Context{Out: io.Discard, JSONOutput: true}, opts: OutputOptions{Output: "jobs.csv"}, want: export.FormatJSON},
		{name: "plain flag", ctx: &Context{Out: io.Discard, PlainText: true}, want: export.FormatTSV},
		{name: "explicit format", ctx: &Context{Out: io.Discard}, opts: OutputOptions{Format: "md"}, want: export.FormatMarkdown},
		{name: "file defaults to csv", ctx: &Context{Out: io.Discard}, opts: OutputOptions{Output: "jobs.csv"}, want: export.FormatCSV},
		{name: "pipe defaults to csv", ctx: &Context{Out: &bytes.Buffer{}}, want: export.FormatCSV},
	}
	for _, tc := range cases {
		got, err := resolveFormat(tc.ctx, tc.opts)
		if err != nil {
			t.Fatalf("%s: resolveFormat() error = %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: resolveFormat() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestParseQueries(t *testing.T) {
	t.Run("comma separated with repeats", func(t *testing.T) {
		got, err := parseQueries("golang developer, , Data Engineer, GOLANG developer")
		if err != nil {
			t.Fatalf("parseQueries() error = %v", err)
		}
		want := []string{"golang developer", "Data Engineer"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("parseQueries() = %#v, want %#v", got, want)
		}
	})

	t.Run("max query validation", func(t *testing.T) {
		_, err := parseQueries("q1,q2,q3,q4,q5,q6,q7,q8,q9,q10,q11")
		if err == nil || err.Error() != "too many queries: max 10" {
			t.Fatalf("parseQueries() error = %v, want max 10", err)
		}
	})

	t.Run("empty input validation", func(t *testing.T) {
		_, err := parseQueries(" ,  , ")
		if err == nil || err.Error() != "at least one non-empty query is required" {
			t.Fatalf("parseQueries() error = %v", err)
		}
	})
}

func TestLoadQueriesFromJSON(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    []string
		wantErr string
	}{
		{name: "array", content: `["rust developer","  mlops  ",""]`, want: []string{"rust developer", "mlops"}},
		{name: "object", content: `{"queries":["sre","data engineer"]}`, want: []string{"sre", "data engineer"}},
		{name: "invalid json", content: `{"queries":[`, wantErr: "parse --query-file"},
		{name: "wrong key", content: `{"job_titles":["sre"]}`, wantErr: `object with "queries" string array`},
		{name: "non-string", content: `{"queries":["sre",1]}`, wantErr: "queries[1] must be a string"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := loadQueriesFromJSON(writeFile(t, "queries.json", tc.content))
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("loadQueriesFromJSON() error = %v, want %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadQueriesFromJSON() error = %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("loadQueriesFromJSON() = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestResolveQueriesMergesFileAfterPositional(t *testing.T) {
	path := writeFile(t, "queries.json", `["golang","MLOps"]`)
	got, err := resolveQueries("Golang,Java Spring", path)
	if err != nil {
		t.Fatalf("resolveQueries() error = %v", err)
	}
	want := []string{"Golang", "Java Spring", "MLOps"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("resolveQueries() = %#v, want %#v", got, want)
	}
}

func TestRequestOptions(t *testing.T) {
	opts := RequestOptions{
		Country:   []string{" FR", "de"},
		Contract:  []string{"CDI", " "},
		Remote:    "Remote",
		SalaryMin: 45000,
		Language:  []string{"python"},
		Exclude:   []string{"stage"},
	}
	req := opts.request("golang, kubernetes  docker")

	if want := []string{"golang", "kubernetes", "docker"}; !reflect.DeepEqual(req.Keywords, want) {
		t.Fatalf("Keywords = %#v, want %#v", req.Keywords, want)
	}
	if want := []string{"fr", "de"}; !reflect.DeepEqual(req.Countries, want) {
		t.Fatalf("Countries = %#v, want %#v", req.Countries, want)
	}
	if want := []string{"CDI"}; !reflect.DeepEqual(req.ContractTypes, want) {
		t.Fatalf("ContractTypes = %#v, want %#v", req.ContractTypes, want)
	}
	if req.RemotePreference != models.RemoteFull {
		t.Fatalf("RemotePreference = %q, want remote", req.RemotePreference)
	}
	if req.SalaryMin == nil || *req.SalaryMin != 45000 {
		t.Fatalf("SalaryMin = %v, want 45000", req.SalaryMin)
	}

	if got := (RequestOptions{}).request("go").SalaryMin; got != nil {
		t.Fatalf("SalaryMin = %v, want nil", *got)
	}
}

func TestHarvestRequestUsesConfiguredCountry(t *testing.T) {
	cfg := config.Config{DefaultCountry: "DE"}
	req := RequestOptions{}.harvestRequest("rust", cfg)
	if want := []string{"de"}; !reflect.DeepEqual(req.Countries, want) {
		t.Fatalf("Countries = %#v, want %#v", req.Countries, want)
	}

	req = RequestOptions{Country: []string{"us"}}.harvestRequest("rust", cfg)
	if want := []string{"us"}; !reflect.DeepEqual(req.Countries, want) {
		t.Fatalf("Countries = %#v, want %#v", req.Countries, want)
	}
}

func TestFilterRanked(t *testing.T) {
	ranked := []models.Posting{
		{ID: "a", MatchScore: models.Float(0.9)},
		{ID: "b", MatchScore: models.Float(0.5)},
		{ID: "c", MatchScore: models.Float(0.2)},
		{ID: "d"},
	}
	got := filterRanked(ranked, 0.5, 0)
	if len(got) != 2 || got[1].ID != "b" {
		t.Fatalf("filterRanked(min) = %v", got)
	}
	got = filterRanked(ranked, 0, 3)
	if len(got) != 3 {
		t.Fatalf("filterRanked(top) = %d, want 3", len(got))
	}
	if len(ranked) != 4 {
		t.Fatalf("input modified")
	}
}

func TestFormatSearchSummary(t *testing.T) {
	postings := []models.Posting{
		{Source: "indeed", MatchScore: models.Float(0.75)},
		{Source: "apec"},
		{Source: "Indeed"},
		{},
	}
	want := "summary: ranked=4 top_score=0.750 by_source=apec:1, indeed:2, unknown:1"
	if got := formatSearchSummary(postings); got != want {
		t.Fatalf("formatSearchSummary() = %q, want %q", got, want)
	}
	if got := formatSearchSummary(nil); got != "summary: ranked=0 by_source=none" {
		t.Fatalf("formatSearchSummary(nil) = %q", got)
	}
}

func TestDedupeMergeIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	history := filepath.Join(dir, "history.json")
	input := filepath.Join(dir, "input.json")
	if err := store.WritePostings(input, []models.Posting{
		{ID: "apec-1", Source: "apec", Title: "Data Engineer", Company: "Acme", City: "Paris"},
		{ID: "apec-2", Source: "apec", Title: "data engineer", Company: "ACME", City: "paris"},
	}); err != nil {
		t.Fatalf("WritePostings() error = %v", err)
	}

	for i, wantStats := range []string{
		"total_seen=0 total_input=2 added=1 total_out=1",
		"total_seen=1 total_input=2 added=0 total_out=1",
	} {
		var out bytes.Buffer
		cmd := &DedupeMergeCmd{Seen: history, Input: input, Out: history, Stats: true}
		if err := cmd.Run(&Context{Out: &out}); err != nil {
			t.Fatalf("run %d: Run() error = %v", i, err)
		}
		if got := strings.TrimSpace(out.String()); got != wantStats {
			t.Fatalf("run %d: stats = %q, want %q", i, got, wantStats)
		}
	}

	got, err := store.ReadPostings(history)
	if err != nil {
		t.Fatalf("ReadPostings() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "apec-1" {
		t.Fatalf("history = %v", got)
	}
}

func TestDedupeDiff(t *testing.T) {
	dir := t.TempDir()
	incoming := filepath.Join(dir, "new.json")
	seen := filepath.Join(dir, "seen.json")
	out := filepath.Join(dir, "unseen.json")
	if err := store.WritePostings(incoming, []models.Posting{
		{ID: "a", Source: "indeed", Title: "SRE", Company: "Acme"},
		{ID: "b", Source: "indeed", Title: "Go Developer", Company: "Beta"},
	}); err != nil {
		t.Fatalf("WritePostings() error = %v", err)
	}
	if err := store.WritePostings(seen, []models.Posting{{ID: "x", Source: "indeed", Title: "sre", Company: "acme"}}); err != nil {
		t.Fatalf("WritePostings() error = %v", err)
	}

	if err := (&DedupeDiffCmd{New: incoming, Seen: seen, Out: out}).Run(&Context{Out: io.Discard}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got, err := store.ReadPostings(out)
	if err != nil {
		t.Fatalf("ReadPostings() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("unseen = %v, want [b]", got)
	}

	err = (&DedupeDiffCmd{New: incoming, Seen: seen, Out: seen}).Run(&Context{Out: io.Discard})
	if err == nil {
		t.Fatalf("Run() with --out == --seen error = nil")
	}
}

func TestConnectorInfos(t *testing.T) {
	cfg := config.Config{Connectors: []string{"Indeed", "adzuna"}}
	infos := connectorInfos(cfg)
	if len(infos) != 7 || infos[0].Name != "france_travail" || infos[6].Name != "indeed" {
		t.Fatalf("infos = %+v", infos)
	}
	byName := map[string]connectorInfo{}
	for _, info := range infos {
		byName[info.Name] = info
	}
	if !byName["indeed"].Enabled || byName["apec"].Enabled {
		t.Fatalf("enabled flags = %+v", byName)
	}
	if byName["eures"].Status != "not implemented" {
		t.Fatalf("eures status = %q", byName["eures"].Status)
	}
	if !strings.HasPrefix(byName["adzuna"].Status, "needs") {
		t.Fatalf("adzuna status = %q", byName["adzuna"].Status)
	}

	cfg.Adzuna = config.AdzunaConfig{AppID: "id", AppKey: "key"}
	cfg.Connectors = nil
	for _, info := range connectorInfos(cfg) {
		if !info.Enabled {
			t.Fatalf("%s disabled with empty connector list", info.Name)
		}
		if info.Name == "adzuna" && info.Status != "ready" {
			t.Fatalf("adzuna status = %q, want ready", info.Status)
		}
	}
}

func TestProfileFieldsPatch(t *testing.T) {
	fields := ProfileFields{
		FullName:  " Ada ",
		Remote:    "hybrid",
		Countries: []string{"FR"},
		CV:        "-",
	}
	patch, err := fields.patch(strings.NewReader("Senior Python developer, 6 years of experience"))
	if err != nil {
		t.Fatalf("patch() error = %v", err)
	}
	if patch.FullName == nil || *patch.FullName != "Ada" {
		t.Fatalf("FullName = %v", patch.FullName)
	}
	if patch.PreferredRemote == nil || *patch.PreferredRemote != models.RemoteHybrid {
		t.Fatalf("PreferredRemote = %v", patch.PreferredRemote)
	}
	if patch.PreferredCountries == nil || (*patch.PreferredCountries)[0] != "fr" {
		t.Fatalf("PreferredCountries = %v", patch.PreferredCountries)
	}
	if patch.CVText == nil || !strings.HasPrefix(*patch.CVText, "Senior Python") {
		t.Fatalf("CVText = %v", patch.CVText)
	}
	if patch.Email != nil || patch.SalaryMin != nil || patch.PreferredContractTypes != nil {
		t.Fatalf("unset fields leaked into patch: %+v", patch)
	}

	empty, err := ProfileFields{}.patch(strings.NewReader(""))
	if err != nil || !empty.Empty() {
		t.Fatalf("empty patch = %+v, %v", empty, err)
	}
}
