package htmlform

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/url"
	"strings"
)

// Param is one named entry of a request. Multi-selects carry several values.
type Param struct {
	Name   string
	Values []string
	File   bool
}

// Request is the wire-level description of a form submission.
type Request struct {
	Method   string
	URL      string
	Encoding Encoding
	Values   []Param
}

// Get returns the values sent under name.
func (r *Request) Get(name string) ([]string, bool) {
	for _, p := range r.Values {
		if p.Name == name {
			return p.Values, true
		}
	}
	return nil, false
}

func (r *Request) Names() []string {
	names := make([]string, 0, len(r.Values))
	for _, p := range r.Values {
		names = append(names, p.Name)
	}
	return names
}

func (r *Request) URLValues() url.Values {
	values := url.Values{}
	for _, p := range r.Values {
		for _, v := range p.Values {
			values.Add(p.Name, v)
		}
	}
	return values
}

// EncodeQuery url-encodes the values keeping field order, which
// url.Values.Encode would sort away.
func (r *Request) EncodeQuery() string {
	var buf strings.Builder
	for _, p := range r.Values {
		for _, v := range p.Values {
			if buf.Len() > 0 {
				buf.WriteByte('&')
			}
			buf.WriteString(url.QueryEscape(p.Name))
			buf.WriteByte('=')
			buf.WriteString(url.QueryEscape(v))
		}
	}
	return buf.String()
}

// Encode serializes the values as a POST body for the request's encoding.
func (r *Request) Encode() ([]byte, string, error) {
	switch r.Encoding {
	case EncodingMultipart:
		return r.encodeMultipart()
	case EncodingForm, "":
		return []byte(r.EncodeQuery()), "application/x-www-form-urlencoded", nil
	}
	return nil, "", fmt.Errorf("unknown encoding %q", r.Encoding)
}

func (r *Request) encodeMultipart() ([]byte, string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for _, p := range r.Values {
		for _, v := range p.Values {
			if p.File {
				// Only the file name travels; there is no content to upload.
				if _, err := w.CreateFormFile(p.Name, v); err != nil {
					return nil, "", fmt.Errorf("multipart file %s: %w", p.Name, err)
				}
				continue
			}
			if err := w.WriteField(p.Name, v); err != nil {
				return nil, "", fmt.Errorf("multipart field %s: %w", p.Name, err)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body.Bytes(), w.FormDataContentType(), nil
}

// DeriveRequest projects form into the request a browser would send when
// the submit control named submit is pressed. An empty submit picks the
// first submit control in the form.
func DeriveRequest(form *Form, submit string, opts ...Option) (*Request, error) {
	o := buildOptions(opts)

	submits := form.submitNames()
	if submit == "" {
		if len(submits) > 0 {
			submit = submits[0]
			o.infof("Submitting with '%s'", submit)
		}
	} else if !containsString(submits, submit) {
		return nil, &UnknownSubmissionError{Name: submit, Valid: submits}
	}

	method := form.Method
	if method != MethodGet && method != MethodPost {
		o.warnf("Invalid method (%s), defaulting to GET", method)
		method = MethodGet
	}

	req := &Request{
		Method:   method,
		URL:      form.URL,
		Encoding: form.Enctype,
	}

	form.Fields.Each(func(key string, field *Field) bool {
		if !field.Named() {
			return true
		}
		if field.IsSubmit() && key != submit {
			return true
		}
		values := field.Values()
		if values == nil {
			return true
		}
		req.Values = append(req.Values, Param{
			Name:   key,
			Values: values,
			File:   field.Kind == KindInput && strings.EqualFold(field.Type, "file"),
		})
		return true
	})

	return req, nil
}
