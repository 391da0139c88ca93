package apidocs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestReadDoc(t *testing.T) {
	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	var parsed struct {
		Info  map[string]string `json:"info"`
		Paths map[string]any    `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		t.Fatalf("doc is not valid JSON: %v", err)
	}
	if parsed.Info["title"] != "llmsettings API" {
		t.Fatalf("unexpected info: %+v", parsed.Info)
	}
	for _, p := range []string{"/providers", "/providers/{provider}/models", "/editing"} {
		if _, ok := parsed.Paths[p]; !ok {
			t.Fatalf("missing path %s", p)
		}
	}
}
