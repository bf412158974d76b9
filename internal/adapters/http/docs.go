package http

import (
	"os"
	"sync"

	"github.com/gofiber/fiber/v2"
)

const openAPIPath = "api/openapi.yaml"

const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>RouteBoard API</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
  <style>body{margin:0;background:#fafafa}</style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/docs/openapi.yaml',
      dom_id: '#swagger-ui',
      deepLinking: true,
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: 'BaseLayout',
    });
  </script>
</body>
</html>`

// SetupDocs serves Swagger UI at /docs over the bundled OpenAPI document.
// The document is read from disk once, on first request; a build shipped
// without it gets a 404 on the spec route rather than a startup failure.
func SetupDocs(app *fiber.App) {
	var once sync.Once
	var spec []byte

	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.SendString(docsPage)
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		once.Do(func() {
			spec, _ = os.ReadFile(openAPIPath)
		})
		if len(spec) == 0 {
			return errNotFound(c, "api documentation is not bundled with this build")
		}
		c.Type("yaml")
		return c.Send(spec)
	})
}
