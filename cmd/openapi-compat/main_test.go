package main

import (
	"testing"

	"adminhub/docs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
basePath: /admin/v1
paths:
  /event-post/{id}/approve:
    post:
      parameters:
        - { in: path, name: id, required: true }
      responses:
        "200": {}
        "409": {}
  /category:
    get:
      responses:
        "200": {}
`

func TestParseDoc_BuiltInDocs(t *testing.T) {
	doc, err := parseDoc([]byte(docs.SwaggerInfo.ReadDoc()))
	require.NoError(t, err)

	assert.Equal(t, "/admin/v1", doc.BasePath)
	approve, ok := doc.Paths["/event-post/{id}/approve"]["patch"]
	require.True(t, ok)
	assert.Contains(t, approve.Responses, "200")
	assert.Contains(t, approve.Required, "path:id")
}

func TestCompare(t *testing.T) {
	base, err := parseDoc([]byte(baseYAML))
	require.NoError(t, err)

	t.Run("identical documents pass", func(t *testing.T) {
		assert.Empty(t, compare(base, base))
	})

	t.Run("removals and new required params are reported", func(t *testing.T) {
		revision, err := parseDoc([]byte(`
basePath: /admin/v2
paths:
  /event-post/{id}/approve:
    post:
      parameters:
        - { in: path, name: id, required: true }
        - { in: query, name: reason, required: true }
      responses:
        "200": {}
`))
		require.NoError(t, err)

		assert.Equal(t, []string{
			`base path changed: "/admin/v1" -> "/admin/v2"`,
			"new required parameter: POST /event-post/{id}/approve -> query:reason",
			"removed path: /category",
			"removed response code: POST /event-post/{id}/approve -> 409",
		}, compare(base, revision))
	})

	t.Run("missing paths is an error", func(t *testing.T) {
		_, err := parseDoc([]byte("swagger: '2.0'\n"))
		assert.Error(t, err)
	})
}
