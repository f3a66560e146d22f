package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithError(c, http.StatusConflict, "Username already taken.")

	if w.Code != http.StatusConflict {
		t.Errorf("got status %d, want 409", w.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Error != "Conflict" {
		t.Errorf("got error %q, want Conflict", body.Error)
	}
	if body.Message != "Username already taken." {
		t.Errorf("got message %q", body.Message)
	}
}
