package docs

import (
	"strings"
	"testing"
)

func TestSwaggerInfoRegistered(t *testing.T) {
	if SwaggerInfo == nil {
		t.Fatal("swagger info not initialized")
	}
	if SwaggerInfo.Title == "" {
		t.Fatal("swagger info missing title")
	}
}

func TestSwaggerDocRenders(t *testing.T) {
	doc := SwaggerInfo.ReadDoc()
	for _, path := range []string{"/api/coins", "/api/coins/{id}", "/api/search", "/api/global", "/health"} {
		if !strings.Contains(doc, `"`+path+`"`) {
			t.Errorf("swagger doc missing path %s", path)
		}
	}
}
