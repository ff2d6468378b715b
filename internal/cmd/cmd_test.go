package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jimezsa/imsctl/internal/api"
	"github.com/jimezsa/imsctl/internal/apitest"
	"github.com/jimezsa/imsctl/internal/console"
	"github.com/jimezsa/imsctl/internal/export"
	"github.com/jimezsa/imsctl/internal/schema"
	"github.com/jimezsa/imsctl/internal/ui"
)

type harness struct {
	ctx  *Context
	out  *bytes.Buffer
	err  *bytes.Buffer
	fake *apitest.Server
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	reg := schema.DefaultRegistry()
	fake := apitest.New(reg)
	client, err := api.NewClient(apitest.Doer{Handler: fake}, api.Options{BaseURL: apitest.BaseURL, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	fake.Seed("users", schema.Record{"userId": 1, "userName": "hr.anna", "status": true})
	return &harness{
		ctx: &Context{
			Out:     out,
			Err:     errOut,
			In:      strings.NewReader(input),
			UI:      ui.New(out, errOut, ui.ColorNever, true),
			Logger:  zerolog.Nop(),
			Console: console.New(client, reg, console.Options{Location: time.UTC, Logger: zerolog.Nop()}),
		},
		out:  out,
		err:  errOut,
		fake: fake,
	}
}

func (h *harness) seedCandidates(n int) {
	for i := 1; i <= n; i++ {
		h.fake.Seed("candidates", schema.Record{
			"candidateId":     i,
			"fullName":        "Candidate " + string(rune('A'+i-1)),
			"email":           "c@example.com",
			"currentPosition": "frontend",
			"status":          "new",
			"skills":          []any{"react"},
			"userId":          1,
		})
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name string
		ctx  *Context
		flag string
		want export.Format
	}{
		{"json flag wins", &Context{Out: io.Discard, JSONOutput: true}, "md", export.FormatJSON},
		{"plain flag", &Context{Out: io.Discard, PlainText: true}, "", export.FormatTSV},
		{"explicit", &Context{Out: io.Discard}, "md", export.FormatMarkdown},
		{"non-tty default", &Context{Out: io.Discard}, "", export.FormatCSV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveFormat(tt.ctx, tt.flag)
			if err != nil {
				t.Fatalf("resolveFormat() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("resolveFormat() = %q, want %q", got, tt.want)
			}
		})
	}
	if _, err := resolveFormat(&Context{Out: io.Discard}, "xml"); err == nil {
		t.Fatalf("resolveFormat(xml) error = nil")
	}
}

func TestListCommandWritesCSV(t *testing.T) {
	h := newHarness(t, "")
	h.seedCandidates(12)

	cmd := &ListCmd{Entity: "candidates", Page: 2}
	if err := cmd.Run(h.ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(h.out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2:\n%s", len(lines), h.out.String())
	}
	if lines[0] != "id,Name,Email,Phone No,Current Position,Owner HR,Status" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "11,Candidate K,c@example.com,N/A,Frontend Developer,") {
		t.Fatalf("row = %q", lines[1])
	}
}

func TestListCommandWarnsAboutHiddenRecords(t *testing.T) {
	h := newHarness(t, "")
	h.fake.IgnoreFilters = true
	h.seedCandidates(3)

	cmd := &ListCmd{Entity: "candidates", Status: "rejected"}
	if err := cmd.Run(h.ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := h.err.String(); !strings.Contains(got, "3 records on this page did not match the filter") {
		t.Fatalf("stderr = %q", got)
	}
	if lines := strings.Split(strings.TrimSpace(h.out.String()), "\n"); len(lines) != 1 {
		t.Fatalf("stdout lines = %d, want header only:\n%s", len(lines), h.out.String())
	}
}

func TestListCommandRejectsUnsupported(t *testing.T) {
	h := newHarness(t, "")
	err := (&ListCmd{Entity: "offers"}).Run(h.ctx)
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("Run() error = %v", err)
	}
	err = (&ListCmd{Entity: "widgets"}).Run(h.ctx)
	if err == nil || !strings.Contains(err.Error(), "unknown entity") {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestGetCommand(t *testing.T) {
	h := newHarness(t, "")
	h.seedCandidates(1)

	if err := (&GetCmd{Entity: "candidate", ID: "1", Format: "md"}).Run(h.ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	out := h.out.String()
	if !strings.Contains(out, "- **Recruiter**: hr.anna") || !strings.Contains(out, "- **Skills**: React") {
		t.Fatalf("output = %q", out)
	}

	err := (&GetCmd{Entity: "candidate", ID: "9"}).Run(h.ctx)
	if err == nil || !strings.Contains(err.Error(), "was not found") {
		t.Fatalf("missing record error = %v", err)
	}
}

func TestCreateCommandWithUpload(t *testing.T) {
	h := newHarness(t, "")
	cv := filepath.Join(t.TempDir(), "grace.pdf")
	if err := os.WriteFile(cv, []byte("%PDF"), 0o600); err != nil {
		t.Fatal(err)
	}

	cmd := &CreateCmd{
		Entity: "candidates",
		Set: []string{
			"fullName=Grace Hopper",
			"email=grace@example.com",
			"currentPosition=backend",
			"skills=java, python",
			"userId=1",
			"highestEducation=phd",
			"note=likes a=b",
		},
		CV: cv,
	}
	if err := cmd.Run(h.ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	rec, ok := h.fake.Record("candidates", "1")
	if !ok {
		t.Fatalf("candidate not stored")
	}
	if got := rec.Strings("skills"); len(got) != 2 || got[1] != "python" {
		t.Fatalf("skills = %v", got)
	}
	if rec.String("note") != "likes a=b" {
		t.Fatalf("note = %q", rec.String("note"))
	}
	if _, ok := h.fake.Upload(rec.String("cvFilePath")); !ok {
		t.Fatalf("cvFilePath %q not uploaded", rec.String("cvFilePath"))
	}
	if !strings.Contains(h.out.String(), "Created candidate.") {
		t.Fatalf("output = %q", h.out.String())
	}
}

func TestCreateCommandErrors(t *testing.T) {
	h := newHarness(t, "")
	err := (&CreateCmd{Entity: "candidates", Set: []string{"fullName"}}).Run(h.ctx)
	if err == nil || !strings.Contains(err.Error(), "FIELD=VALUE") {
		t.Fatalf("malformed --set error = %v", err)
	}
	err = (&CreateCmd{Entity: "candidates", Set: []string{"colour=red"}}).Run(h.ctx)
	if err == nil || !strings.Contains(err.Error(), `no field "colour"`) {
		t.Fatalf("unknown field error = %v", err)
	}
	err = (&CreateCmd{Entity: "candidates", Set: []string{"fullName=Ada"}}).Run(h.ctx)
	if err == nil || !strings.Contains(err.Error(), "Please check") {
		t.Fatalf("invalid form error = %v", err)
	}
	if h.fake.Count(http.MethodPost, "/candidates") != 0 {
		t.Fatalf("invalid create reached the API")
	}
}

func TestUpdateCommandKeepsStoredValues(t *testing.T) {
	h := newHarness(t, "")
	h.seedCandidates(1)

	cmd := &UpdateCmd{Entity: "candidates", ID: "1", Set: []string{"status=shortlisted", "gender=female", "highestEducation=master"}}
	if err := cmd.Run(h.ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	rec, _ := h.fake.Record("candidates", "1")
	if rec.String("status") != "shortlisted" || rec.String("fullName") != "Candidate A" {
		t.Fatalf("stored = %v", rec)
	}

	err := (&UpdateCmd{Entity: "candidates", ID: "7", Set: []string{"status=new"}}).Run(h.ctx)
	if err == nil || !strings.Contains(err.Error(), "could not load") {
		t.Fatalf("missing record error = %v", err)
	}
	if h.fake.Count(http.MethodPut, "/candidates/update/7") != 0 {
		t.Fatalf("update of a missing record reached the API")
	}
}

func TestDeleteCommandConfirms(t *testing.T) {
	h := newHarness(t, "n\n")
	h.seedCandidates(2)

	if err := (&DeleteCmd{Entity: "candidates", ID: "2"}).Run(h.ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if h.fake.Len("candidates") != 2 {
		t.Fatalf("declined delete removed the record")
	}
	if !strings.Contains(h.err.String(), "Delete candidate Candidate B? [y/N]") {
		t.Fatalf("prompt = %q", h.err.String())
	}

	if err := (&DeleteCmd{Entity: "candidates", ID: "2", Yes: true}).Run(h.ctx); err != nil {
		t.Fatalf("Run(--yes) error = %v", err)
	}
	if h.fake.Len("candidates") != 1 {
		t.Fatalf("delete did not remove the record")
	}

	err := (&DeleteCmd{Entity: "jobs", ID: "1", Yes: true}).Run(h.ctx)
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("job delete error = %v", err)
	}
}

func TestUploadCommand(t *testing.T) {
	h := newHarness(t, "")
	path := filepath.Join(t.TempDir(), "cv.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := (&UploadCmd{File: path}).Run(h.ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	stored := strings.TrimSpace(h.out.String())
	data, ok := h.fake.Upload(stored)
	if !ok || string(data) != "hello" {
		t.Fatalf("upload %q = %q, %v", stored, data, ok)
	}
}

func TestBrowseCommand(t *testing.T) {
	h := newHarness(t, "n\nn\np\ns Candidate K\nd 11\ny\nf rejected\nbogus\nq\n")
	h.seedCandidates(12)

	if err := (&BrowseCmd{Entity: "candidates"}).Run(h.ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	out, errOut := h.out.String(), h.err.String()
	for _, want := range []string{"Page 1 of 2", "Page 2 of 2", "Deleted candidate #11.", `search="Candidate K" status="rejected"`, "No records."} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(errOut, "No such page.") {
		t.Fatalf("second next did not warn:\n%s", errOut)
	}
	if !strings.Contains(errOut, `Unknown command "bogus"`) {
		t.Fatalf("unknown command not reported:\n%s", errOut)
	}
	if h.fake.Len("candidates") != 11 {
		t.Fatalf("candidates = %d, want 11", h.fake.Len("candidates"))
	}
}

func TestEntitiesCommandJSON(t *testing.T) {
	h := newHarness(t, "")
	h.ctx.JSONOutput = true
	if err := (&EntitiesCmd{}).Run(h.ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	var got struct {
		Items []struct {
			Name       string   `json:"name"`
			Operations []string `json:"operations"`
		} `json:"items"`
	}
	if err := json.Unmarshal(h.out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Items) != 5 || got.Items[3].Name != "offer" || strings.Join(got.Items[3].Operations, ",") != "get,create" {
		t.Fatalf("entities = %+v", got.Items)
	}
}
