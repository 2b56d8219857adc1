package view_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porterlabs/bucketlist/internal/shared"
	"github.com/porterlabs/bucketlist/internal/view"
)

func TestRenderLoginPage(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)

	res := httptest.NewRecorder()
	err = engine.Render(res, "pages/login.html", view.TemplateData{
		Title:     "Login",
		CSRFToken: "tok123",
		Data:      map[string]any{"Next": "/activities"},
	})
	require.NoError(t, err)

	body := res.Body.String()
	assert.Contains(t, res.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "<form")
	assert.Contains(t, body, "tok123")
}

func TestRenderFlashPartial(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)

	res := httptest.NewRecorder()
	err = engine.Render(res, "pages/index.html", view.TemplateData{
		Title: "Bucket List",
		Flash: &shared.FlashMessage{Kind: "success", Message: "Skydiving has been added."},
	})
	require.NoError(t, err)
	assert.Contains(t, res.Body.String(), "Skydiving has been added.")
}

func TestRenderUnknownTemplateErrors(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)

	res := httptest.NewRecorder()
	assert.Error(t, engine.Render(res, "pages/nope.html", view.TemplateData{}))
}
