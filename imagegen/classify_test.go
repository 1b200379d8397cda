package imagegen

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("connection refused"), "connection refused"},
		{
			"python dict body",
			errors.New(`403 PERMISSION_DENIED. {'error': {'code': 403, 'message': 'Imagen API is only accessible to billed users at this time.', 'status': 'PERMISSION_DENIED'}}`),
			Signature,
		},
		{
			"python body with apostrophe",
			errors.New(`400 INVALID_ARGUMENT. {'error': {'code': 400, 'message': "The prompt isn't allowed", 'status': 'INVALID_ARGUMENT'}}`),
			"The prompt isn't allowed",
		},
		{
			"python body with escaped quote",
			errors.New(`400 INVALID_ARGUMENT. {'error': {'message': 'Can\'t say "None" or True', 'retry': None, 'fatal': True}}`),
			`Can't say "None" or True`,
		},
		{
			"json body",
			errors.New(`400 INVALID_ARGUMENT. {"error": {"code": 400, "message": "bad prompt", "status": "INVALID_ARGUMENT"}}`),
			"bad prompt",
		},
		{"json without leading code", errors.New(`{"error":{"message":"quota"}}`), "quota"},
		{"broken body", errors.New("500 INTERNAL. {not json"), "500 INTERNAL. {not json"},
		{"body without message", errors.New(`503 UNAVAILABLE. {"error": {}}`), `503 UNAVAILABLE. {"error": {}}`},
		{"backend error", fmt.Errorf("wrap: %w", &BackendError{Backend: "x", Message: "typed"}), "typed"},
		{"genai error", fmt.Errorf("wrap: %w", genai.APIError{Code: 400, Message: Signature, Status: "INVALID_ARGUMENT"}), Signature},
		{"openai error", newOpenAIError(429, "insufficient_quota", "You exceeded your current quota"), "You exceeded your current quota"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMessage(tt.err))
		})
	}
}

func TestClassify_Similarity(t *testing.T) {
	cf := Classify(billingError("Imagen API only accessible to billed users."))
	assert.True(t, cf.FallbackEligible)
	assert.GreaterOrEqual(t, cf.Similarity, FallbackThreshold)

	cf = Classify(billingError("The prompt was blocked by safety filters."))
	assert.False(t, cf.FallbackEligible)
	assert.Equal(t, "The prompt was blocked by safety filters.", cf.RawMessage)

	cf = Classify(billingError("Imagen API is only accessible to billed accounts right now."))
	assert.False(t, cf.FallbackEligible, "0.78 is below the threshold")
}

func TestClassify_TypedReason(t *testing.T) {
	for _, r := range []Reason{ReasonTierRestricted, ReasonQuotaExceeded} {
		cf := Classify(&BackendError{Backend: "x", Reason: r, Message: "nothing alike"})
		assert.True(t, cf.FallbackEligible, r)
		assert.Equal(t, r, cf.Reason)
	}
	cf := Classify(&BackendError{Backend: "x", Reason: ReasonRateLimited, Message: "slow down"})
	assert.False(t, cf.FallbackEligible)
}

func TestClassify_RawGenAIText(t *testing.T) {
	err := errors.New(`400 INVALID_ARGUMENT. {'error': {'code': 400, 'message': 'Imagen API is only accessible to billed users at this time.', 'status': 'INVALID_ARGUMENT'}}`)
	cf := Classify(err)
	assert.True(t, cf.FallbackEligible)
	assert.InDelta(t, 1.0, cf.Similarity, 1e-9)
}

func newOpenAIError(status int, code, msg string) error {
	return &openai.Error{
		StatusCode: status,
		Code:       code,
		Message:    msg,
		Request:    httptest.NewRequest(http.MethodPost, "https://api.openai.com/v1/images/generations", nil),
		Response:   &http.Response{StatusCode: status},
	}
}

func TestPythonToJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{'a': 'b'}`, `{"a": "b"}`},
		{`{'a': "it's"}`, `{"a": "it's"}`},
		{`{'a': 'it\'s'}`, `{"a": "it's"}`},
		{`{'a': 'say "hi"'}`, `{"a": "say \"hi\""}`},
		{`{'a': None, 'b': True, 'c': False, 'Nonesuch': 1}`, `{"a": null, "b": true, "c": false, "Nonesuch": 1}`},
		{`{'a': 'True or None'}`, `{"a": "True or None"}`},
		{`{'a': 'unterminated`, `{"a": "unterminated`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pythonToJSON(tt.in), tt.in)
	}
}
