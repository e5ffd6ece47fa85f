package validator

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/payments-backend/errors"
)

type testSignup struct {
	Name     string `json:"name" validate:"omitempty,max=128"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidateMiddleware(t *testing.T) {
	c := qt.New(t)
	v := New()

	var got *testSignup
	handler := v.ValidateMiddleware(testSignup{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		model, ok := ValidatedModel[testSignup](r.Context())
		c.Assert(ok, qt.IsTrue)
		_, ok = GetValidatedModel(r.Context())
		c.Assert(ok, qt.IsTrue)
		got = model
		w.WriteHeader(http.StatusOK)
	}))

	do := func(body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}
	mustJSON := func(v any) []byte {
		b, err := json.Marshal(v)
		c.Assert(err, qt.IsNil)
		return b
	}

	rec := do(mustJSON(testSignup{Name: "John Doe", Email: "john@example.com", Password: "password123"}))
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(got, qt.DeepEquals, &testSignup{Name: "John Doe", Email: "john@example.com", Password: "password123"})

	rec = do(mustJSON(map[string]string{"email": "invalid-email", "password": "pass"}))
	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
	var resp struct {
		Code int               `json:"code"`
		Data []ValidationError `json:"data"`
	}
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &resp), qt.IsNil)
	c.Assert(resp.Code, qt.Equals, errors.ErrInvalidUserData.Code)
	c.Assert(resp.Data, qt.DeepEquals, []ValidationError{
		{Field: "Email", Message: "Invalid email format"},
		{Field: "Password", Message: "Must be at least 8 characters long"},
	})

	rec = do([]byte("invalid json"))
	c.Assert(rec.Code, qt.Equals, http.StatusBadRequest)
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &resp), qt.IsNil)
	c.Assert(resp.Code, qt.Equals, errors.ErrMalformedBody.Code)
}

func TestValidationErrorsString(t *testing.T) {
	c := qt.New(t)
	ve := ValidationErrors{{Field: "Email", Message: "bad"}, {Field: "Password", Message: "short"}}
	c.Assert(ve.Error(), qt.Equals, "Email: bad, Password: short")
}
