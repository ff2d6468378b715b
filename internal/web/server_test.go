package web

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/jimezsa/imsctl/internal/api"
	"github.com/jimezsa/imsctl/internal/apitest"
	"github.com/jimezsa/imsctl/internal/console"
	"github.com/jimezsa/imsctl/internal/schema"
)

func newTestServer(t *testing.T) (*Server, *apitest.Server) {
	t.Helper()
	reg := schema.DefaultRegistry()
	fake := apitest.New(reg)
	client, err := api.NewClient(apitest.Doer{Handler: fake}, api.Options{BaseURL: apitest.BaseURL, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	c := console.New(client, reg, console.Options{Location: time.UTC, Logger: zerolog.Nop()})
	srv, err := New(c, Options{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	fake.Seed("users", schema.Record{"userId": 1, "userName": "hr.anna", "email": "anna@ims.io", "role": "manager", "status": true})
	return srv, fake
}

func seedCandidates(fake *apitest.Server, n int) {
	for i := 1; i <= n; i++ {
		fake.Seed("candidates", schema.Record{
			"candidateId":      i,
			"fullName":         fmt.Sprintf("Candidate %02d", i),
			"email":            fmt.Sprintf("c%d@example.com", i),
			"gender":           "female",
			"currentPosition":  "backend",
			"status":           "new",
			"skills":           []any{"java"},
			"userId":           1,
			"userName":         "hr.anna",
			"highestEducation": "bachelor",
		})
	}
}

type result struct {
	rec *httptest.ResponseRecorder
	doc *goquery.Document
}

func do(t *testing.T, srv *Server, req *http.Request) result {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	var doc *goquery.Document
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		var err error
		doc, err = goquery.NewDocumentFromReader(rec.Body)
		if err != nil {
			t.Fatalf("parse html: %v", err)
		}
	}
	return result{rec: rec, doc: doc}
}

func get(t *testing.T, srv *Server, target string, cookies ...*http.Cookie) result {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return do(t, srv, req)
}

func post(t *testing.T, srv *Server, target string, form url.Values) result {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(t, srv, req)
}

func flashCookieOf(t *testing.T, res result) *http.Cookie {
	t.Helper()
	for _, c := range res.rec.Result().Cookies() {
		if c.Name == flashCookie && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", flashCookie)
	return nil
}

func TestHealthzAndRequestID(t *testing.T) {
	srv, _ := newTestServer(t)
	res := get(t, srv, "/healthz")
	if res.rec.Code != http.StatusOK || !strings.Contains(res.rec.Body.String(), `"ok"`) {
		t.Fatalf("GET /healthz = %d %q", res.rec.Code, res.rec.Body.String())
	}
	if id := res.rec.Header().Get(headerRequestID); id == "" {
		t.Fatalf("missing %s header", headerRequestID)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "3f1c8a52-8d6e-4c1b-9f59-1f5b7c0f5a11")
	res = do(t, srv, req)
	if got := res.rec.Header().Get(headerRequestID); got != "3f1c8a52-8d6e-4c1b-9f59-1f5b7c0f5a11" {
		t.Fatalf("request id = %q, want the inbound one", got)
	}
}

func TestNavigationDerivesActiveItemFromRoute(t *testing.T) {
	srv, fake := newTestServer(t)
	seedCandidates(fake, 1)

	res := get(t, srv, "/candidates")
	if res.rec.Code != http.StatusOK {
		t.Fatalf("GET /candidates = %d", res.rec.Code)
	}
	active := res.doc.Find("aside nav a.active")
	if active.Length() != 1 || active.Text() != "Candidates" {
		t.Fatalf("active nav = %q (%d)", active.Text(), active.Length())
	}
	if title := res.doc.Find("title").Text(); title != "Candidates | IMS" {
		t.Fatalf("title = %q", title)
	}
	offers := res.doc.Find(`aside nav a:contains("Offers")`)
	if href, _ := offers.Attr("href"); href != "/offers/create" {
		t.Fatalf("offers nav href = %q", href)
	}

	home := get(t, srv, "/")
	if home.doc.Find("aside nav a.active").Length() != 0 {
		t.Fatalf("home page has an active entity")
	}
}

func TestListPageRendersRowsAndPager(t *testing.T) {
	srv, fake := newTestServer(t)
	seedCandidates(fake, 12)

	res := get(t, srv, "/candidates")
	rows := res.doc.Find("table.records tbody tr[data-id]")
	if rows.Length() != 10 {
		t.Fatalf("rows = %d, want 10", rows.Length())
	}
	first := rows.First().Find("td")
	if got := first.Eq(0).Text(); got != "Candidate 01" {
		t.Fatalf("first name = %q", got)
	}
	if got := first.Eq(3).Text(); got != "Backend Developer" {
		t.Fatalf("position cell = %q", got)
	}
	if res.doc.Find("nav.pager a.prev").Length() != 0 {
		t.Fatalf("page 0 offers a previous link")
	}
	next, ok := res.doc.Find("nav.pager a.next").Attr("href")
	if !ok || next != "/candidates?page=1" {
		t.Fatalf("next href = %q", next)
	}

	res = get(t, srv, next)
	if n := res.doc.Find("table.records tbody tr[data-id]").Length(); n != 2 {
		t.Fatalf("page 1 rows = %d, want 2", n)
	}
	if res.doc.Find("nav.pager a.next").Length() != 0 {
		t.Fatalf("last page offers a next link")
	}
	if got := res.doc.Find("nav.pager .position").Text(); got != "Page 2 of 2" {
		t.Fatalf("position = %q", got)
	}
}

func TestListClampsPageBeyondLast(t *testing.T) {
	srv, fake := newTestServer(t)
	seedCandidates(fake, 12)

	res := get(t, srv, "/candidates?page=99&status=new")
	if res.rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", res.rec.Code)
	}
	if loc := res.rec.Header().Get("Location"); loc != "/candidates?page=1&status=new" {
		t.Fatalf("Location = %q", loc)
	}

	res = get(t, srv, "/candidates?page=3&search=nobody")
	if loc := res.rec.Header().Get("Location"); res.rec.Code != http.StatusSeeOther || loc != "/candidates?search=nobody" {
		t.Fatalf("empty result = %d %q", res.rec.Code, loc)
	}
}

func TestListWarnsWhenFilterHidesRecords(t *testing.T) {
	srv, fake := newTestServer(t)
	fake.IgnoreFilters = true
	seedCandidates(fake, 2)
	fake.Seed("candidates", schema.Record{"candidateId": 3, "fullName": "Rejected One", "email": "r@example.com", "status": "rejected"})

	res := get(t, srv, "/candidates?status=rejected")
	if n := res.doc.Find("table.records tbody tr[data-id]").Length(); n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}
	if got := res.doc.Find(".notice.warning").Text(); !strings.Contains(got, "2 records on this page did not match the filter") {
		t.Fatalf("warning = %q", got)
	}
	if get(t, srv, "/candidates").doc.Find(".notice.warning").Length() != 0 {
		t.Fatalf("unfiltered list warns")
	}
}

func TestListShowsDeleteOnlyWhenSupported(t *testing.T) {
	srv, fake := newTestServer(t)
	seedCandidates(fake, 1)
	fake.Seed("jobs", schema.Record{"jobId": 1, "title": "Go developer", "requiredSkills": []any{"java"}})

	if n := get(t, srv, "/candidates").doc.Find("a.delete").Length(); n != 1 {
		t.Fatalf("candidate delete links = %d", n)
	}
	jobs := get(t, srv, "/jobs")
	if n := jobs.doc.Find("a.delete").Length(); n != 0 {
		t.Fatalf("job delete links = %d", n)
	}
	if get(t, srv, "/jobs/delete?id=1").rec.Code != http.StatusNotFound {
		t.Fatalf("job delete route exists")
	}
	if get(t, srv, "/offers").rec.Code != http.StatusNotFound {
		t.Fatalf("offers list route exists")
	}
}

func TestListFailureShowsNotice(t *testing.T) {
	srv, fake := newTestServer(t)
	fake.Fail(http.MethodGet, "/candidates", http.StatusInternalServerError)

	res := get(t, srv, "/candidates")
	if res.rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", res.rec.Code)
	}
	if res.doc.Find(".notice.error").Length() != 1 {
		t.Fatalf("missing error notice")
	}
}

func validCandidateForm() url.Values {
	return url.Values{
		"fullName":          {"Grace Hopper"},
		"email":             {"grace@example.com"},
		"gender":            {"female"},
		"currentPosition":   {"fullstack"},
		"status":            {"new"},
		"skills":            {"java", "python"},
		"yearsOfExperience": {"12"},
		"userId":            {"1"},
		"highestEducation":  {"phd"},
	}
}

func TestCreateRedirectsToListWithFlash(t *testing.T) {
	srv, fake := newTestServer(t)

	res := post(t, srv, "/candidates/create", validCandidateForm())
	if res.rec.Code != http.StatusSeeOther {
		t.Fatalf("POST create = %d, body %s", res.rec.Code, res.rec.Body.String())
	}
	if loc := res.rec.Header().Get("Location"); loc != "/candidates" {
		t.Fatalf("Location = %q", loc)
	}
	if fake.Len("candidates") != 1 {
		t.Fatalf("stored candidates = %d", fake.Len("candidates"))
	}

	list := get(t, srv, "/candidates", flashCookieOf(t, res))
	if got := list.doc.Find(".notice.success").Text(); !strings.Contains(got, "Created candidate") {
		t.Fatalf("flash = %q", got)
	}
}

func TestCreateOfferRedirectsToDetails(t *testing.T) {
	srv, fake := newTestServer(t)
	seedCandidates(fake, 1)
	fake.Seed("interviews", schema.Record{"interviewId": 1, "title": "Round 1"})

	res := post(t, srv, "/offers/create", url.Values{
		"candidateId":         {"1"},
		"contractType":        {"permanent"},
		"position":            {"backend"},
		"level":               {"junior"},
		"userId":              {"1"},
		"department":          {"it"},
		"interviewId":         {"1"},
		"contractPeriodStart": {"2024-04-01"},
		"contractPeriodEnd":   {"2025-03-31"},
		"dueDate":             {"2024-03-20"},
		"baseSalary":          {"2500"},
		"status":              {"Pending"},
		"notes":               {"welcome"},
	})
	if res.rec.Code != http.StatusSeeOther {
		t.Fatalf("POST offer = %d", res.rec.Code)
	}
	if loc := res.rec.Header().Get("Location"); loc != "/offers/details?id=1" {
		t.Fatalf("Location = %q", loc)
	}
	stored, _ := fake.Record("offers", "1")
	if got := stored.String("contractPeriodStart"); got != "2024-04-01" {
		t.Fatalf("contractPeriodStart = %q", got)
	}
}

func TestCreateInvalidKeepsValues(t *testing.T) {
	srv, fake := newTestServer(t)
	form := validCandidateForm()
	form.Del("email")

	res := post(t, srv, "/candidates/create", form)
	if res.rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", res.rec.Code)
	}
	if fake.Count(http.MethodPost, "/candidates") != 0 {
		t.Fatalf("invalid form reached the API")
	}
	if v, _ := res.doc.Find(`input[name="fullName"]`).Attr("value"); v != "Grace Hopper" {
		t.Fatalf("fullName value = %q", v)
	}
	if res.doc.Find(`.field.invalid[data-field="email"]`).Length() != 1 {
		t.Fatalf("email not marked invalid")
	}
	checked := res.doc.Find(`input[name="skills"][checked]`)
	if checked.Length() != 2 {
		t.Fatalf("checked skills = %d, want 2", checked.Length())
	}
}

func TestCreateAPIFailureKeepsValues(t *testing.T) {
	srv, fake := newTestServer(t)
	fake.Fail(http.MethodPost, "/candidates", http.StatusInternalServerError)

	res := post(t, srv, "/candidates/create", validCandidateForm())
	if res.rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", res.rec.Code)
	}
	if res.doc.Find(".notice.error").Length() != 1 {
		t.Fatalf("missing error notice")
	}
	if v, _ := res.doc.Find(`select[name="highestEducation"] option[selected]`).Attr("value"); v != "phd" {
		t.Fatalf("highestEducation selected = %q", v)
	}
}

func TestFormFailsWhenReferencesFail(t *testing.T) {
	srv, fake := newTestServer(t)
	fake.Fail(http.MethodGet, "/jobs", http.StatusInternalServerError)

	res := get(t, srv, "/interviews/create")
	if res.rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", res.rec.Code)
	}
	if res.doc.Find("form.entity-form").Length() != 0 {
		t.Fatalf("form rendered despite reference failure")
	}
}

func TestSubmitSurvivesReferenceFailure(t *testing.T) {
	srv, fake := newTestServer(t)
	fake.Fail(http.MethodGet, "/users", http.StatusInternalServerError)

	form := validCandidateForm()
	form.Set("fullName", "Typed By User")
	form.Del("email")
	res := post(t, srv, "/candidates/create", form)
	if res.rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", res.rec.Code)
	}
	if v, _ := res.doc.Find(`input[name="fullName"]`).Attr("value"); v != "Typed By User" {
		t.Fatalf("fullName value = %q", v)
	}
	if got := res.doc.Find(".notice.warning").Text(); !strings.Contains(got, "Could not load users options") {
		t.Fatalf("warning = %q", got)
	}
	user := res.doc.Find(`select[name="userId"] option[selected]`)
	if v, _ := user.Attr("value"); v != "1" || !strings.Contains(user.Text(), "#1") {
		t.Fatalf("userId selected = %q %q", v, user.Text())
	}

	form.Set("email", "typed@example.com")
	res = post(t, srv, "/candidates/create", form)
	if res.rec.Code != http.StatusSeeOther {
		t.Fatalf("POST create = %d", res.rec.Code)
	}
	if fake.Count(http.MethodPost, "/candidates") != 1 {
		t.Fatalf("create not attempted")
	}
}

func TestEditUpdatesAndStays(t *testing.T) {
	srv, fake := newTestServer(t)
	seedCandidates(fake, 1)

	page := get(t, srv, "/candidates/edit?id=1")
	if page.rec.Code != http.StatusOK {
		t.Fatalf("GET edit = %d", page.rec.Code)
	}
	if v, _ := page.doc.Find(`input[name="fullName"]`).Attr("value"); v != "Candidate 01" {
		t.Fatalf("fullName = %q", v)
	}

	form := validCandidateForm()
	form.Set("fullName", "Renamed")
	res := post(t, srv, "/candidates/edit?id=1", form)
	if res.rec.Code != http.StatusSeeOther || res.rec.Header().Get("Location") != "/candidates/edit?id=1" {
		t.Fatalf("POST edit = %d %q", res.rec.Code, res.rec.Header().Get("Location"))
	}
	stored, _ := fake.Record("candidates", "1")
	if stored.String("fullName") != "Renamed" {
		t.Fatalf("stored fullName = %q", stored.String("fullName"))
	}
	if fake.Count(http.MethodPut, "/candidates/update/1") != 1 {
		t.Fatalf("update path not used")
	}
}

func TestDetailsPage(t *testing.T) {
	srv, fake := newTestServer(t)
	seedCandidates(fake, 1)

	res := get(t, srv, "/candidates/details?id=1")
	if res.rec.Code != http.StatusOK {
		t.Fatalf("status = %d", res.rec.Code)
	}
	if got := res.doc.Find(`dd[data-field="userId"]`).Text(); got != "hr.anna" {
		t.Fatalf("recruiter = %q", got)
	}
	if got := res.doc.Find(`dd[data-field="skills"]`).Text(); got != "Java" {
		t.Fatalf("skills = %q", got)
	}
	if href, _ := res.doc.Find("a.edit").Attr("href"); href != "/candidates/edit?id=1" {
		t.Fatalf("edit href = %q", href)
	}

	missing := get(t, srv, "/candidates/details?id=99")
	if missing.rec.Code != http.StatusNotFound || missing.doc.Find(".not-found").Length() != 1 {
		t.Fatalf("missing details = %d", missing.rec.Code)
	}

	fake.Seed("jobs", schema.Record{"jobId": 3, "title": "QA"})
	job := get(t, srv, "/jobs/details?id=3")
	if job.doc.Find("a.edit").Length() != 0 {
		t.Fatalf("job details offers edit")
	}
}

func TestDeleteConfirmAndStepBack(t *testing.T) {
	srv, fake := newTestServer(t)
	seedCandidates(fake, 11)

	confirm := get(t, srv, "/candidates/delete?id=11&page=1")
	if confirm.rec.Code != http.StatusOK {
		t.Fatalf("GET delete = %d", confirm.rec.Code)
	}
	if got := confirm.doc.Find("strong").Text(); got != "Candidate 11" {
		t.Fatalf("confirm label = %q", got)
	}
	if fake.Len("candidates") != 11 {
		t.Fatalf("confirmation page deleted the record")
	}

	res := post(t, srv, "/candidates/delete?id=11", url.Values{"page": {"1"}})
	if res.rec.Code != http.StatusSeeOther {
		t.Fatalf("POST delete = %d", res.rec.Code)
	}
	if loc := res.rec.Header().Get("Location"); loc != "/candidates" {
		t.Fatalf("Location = %q, want /candidates", loc)
	}
	if fake.Len("candidates") != 10 {
		t.Fatalf("stored candidates = %d", fake.Len("candidates"))
	}
}

func TestDeleteFailureFlashesError(t *testing.T) {
	srv, fake := newTestServer(t)
	seedCandidates(fake, 2)
	fake.Fail(http.MethodDelete, "/candidates/2", http.StatusInternalServerError)

	res := post(t, srv, "/candidates/delete?id=2", url.Values{"page": {"0"}, "status": {"new"}})
	if loc := res.rec.Header().Get("Location"); loc != "/candidates?status=new" {
		t.Fatalf("Location = %q", loc)
	}
	list := get(t, srv, "/candidates", flashCookieOf(t, res))
	if list.doc.Find(".notice.error").Length() != 1 {
		t.Fatalf("missing error flash")
	}
}

func TestListFiltersCarryIntoQuery(t *testing.T) {
	srv, fake := newTestServer(t)
	seedCandidates(fake, 3)

	res := get(t, srv, "/candidates?search=01&status=new")
	if n := res.doc.Find("table.records tbody tr[data-id]").Length(); n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}
	if v, _ := res.doc.Find(`select[name="status"] option[selected]`).Attr("value"); v != "new" {
		t.Fatalf("selected status = %q", v)
	}
	reqs := fake.Requests()
	if q := reqs[len(reqs)-1].RawQuery; q != "page=0&search=01&status=new" {
		t.Fatalf("api query = %q", q)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	res := get(t, srv, "/nowhere")
	if res.rec.Code != http.StatusNotFound || res.doc.Find(".error-message").Length() != 1 {
		t.Fatalf("GET /nowhere = %d", res.rec.Code)
	}
}
