package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

const maxCapturedBody = 1 << 20

// AuditRecorder accepts audit records without blocking the request.
type AuditRecorder interface {
	RecordAudit(entry models.AuditLog)
}

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	if w.body.Len() < maxCapturedBody {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	if w.body.Len() < maxCapturedBody {
		w.body.WriteString(s)
	}
	return w.ResponseWriter.WriteString(s)
}

// SaveHistory records successful mutating requests made with an access token against resource.
func SaveHistory(recorder AuditRecorder, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		action, mutating := models.AuditActionForMethod(c.Request.Method)
		if !mutating || recorder == nil {
			c.Next()
			return
		}

		requestBody := bufferRequestBody(c.Request)
		writer := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		status := writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}
		identity, ok := IdentityFrom(c)
		if !ok {
			return
		}
		claims, ok := identity.AsAccess()
		if !ok {
			return
		}

		entry := models.AuditLog{
			UserID:     claims.ID,
			UserType:   claims.Type,
			Email:      claims.Email,
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID(c, writer.body.Bytes()),
			Changes:    changes(requestBody),
			IP:         optional(identity.IP),
			UserAgent:  optional(identity.UserAgent),
			Timestamp:  time.Now().UTC(),
		}
		recorder.RecordAudit(entry)
	}
}

// replayBody serves the captured prefix followed by the unread rest of the body.
type replayBody struct {
	io.Reader
	io.Closer
}

// bufferRequestBody returns at most maxCapturedBody bytes and leaves the full body readable.
func bufferRequestBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCapturedBody))
	r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(body), r.Body), Closer: r.Body}
	if err != nil {
		return nil
	}
	return body
}

func resourceID(c *gin.Context, responseBody []byte) *string {
	if id := c.Param("id"); id != "" {
		return &id
	}
	var envelope struct {
		Data struct {
			ID       interface{} `json:"id"`
			LegacyID interface{} `json:"_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(responseBody, &envelope); err != nil {
		return nil
	}
	for _, candidate := range []interface{}{envelope.Data.ID, envelope.Data.LegacyID} {
		if s, ok := candidate.(string); ok && s != "" {
			return &s
		}
	}
	return nil
}

func changes(body []byte) types.JSONText {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil
	}
	return types.JSONText(redact(trimmed))
}

var redactedFields = []string{"password", "newPassword", "oldPassword"}

// redact masks credential fields in a JSON object body.
func redact(body []byte) []byte {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return body
	}
	touched := false
	for key := range fields {
		for _, name := range redactedFields {
			if strings.EqualFold(key, name) {
				fields[key] = json.RawMessage(`"[REDACTED]"`)
				touched = true
			}
		}
	}
	if !touched {
		return body
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return body
	}
	return out
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
