package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.NotNil(t, v)
}

func TestSlugValidation(t *testing.T) {
	type input struct {
		Slug string `json:"slug" binding:"required,slug"`
	}

	SetupValidator()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.POST("/test", func(c *gin.Context) {
		var req input
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"slug": req.Slug})
	})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"simple slug", `{"slug":"algebra"}`, http.StatusOK},
		{"hyphenated slug", `{"slug":"computer-science"}`, http.StatusOK},
		{"digits allowed", `{"slug":"calculus-101"}`, http.StatusOK},
		{"uppercase rejected", `{"slug":"Algebra"}`, http.StatusBadRequest},
		{"spaces rejected", `{"slug":"computer science"}`, http.StatusBadRequest},
		{"leading hyphen rejected", `{"slug":"-algebra"}`, http.StatusBadRequest},
		{"empty rejected", `{"slug":""}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}
