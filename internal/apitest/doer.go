package apitest

import (
	"io"
	"net/http"
	"net/http/httptest"

	fhttp "github.com/bogdanfinn/fhttp"
)

// Doer serves fhttp requests from an in-process http.Handler, so API
// clients can run against Server without a socket.
type Doer struct {
	Handler http.Handler
}

func (d Doer) Do(req *fhttp.Request) (*fhttp.Response, error) {
	ctx := req.Context()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var body io.Reader = http.NoBody
	if req.Body != nil {
		body = req.Body
	}
	r := httptest.NewRequest(req.Method, req.URL.String(), body).WithContext(ctx)
	for key, values := range req.Header {
		r.Header[key] = append([]string(nil), values...)
	}

	rec := httptest.NewRecorder()
	d.Handler.ServeHTTP(rec, r)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := rec.Result()
	return &fhttp.Response{
		Status:        res.Status,
		StatusCode:    res.StatusCode,
		Proto:         res.Proto,
		ProtoMajor:    res.ProtoMajor,
		ProtoMinor:    res.ProtoMinor,
		Header:        fhttp.Header(res.Header),
		Body:          res.Body,
		ContentLength: res.ContentLength,
		Request:       req,
	}, nil
}
