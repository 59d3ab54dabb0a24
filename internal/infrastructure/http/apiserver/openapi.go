// Package apiserver provides OpenAPI documentation handling
package apiserver

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec []byte

// OpenAPIHandler serves the API description in YAML and JSON
type OpenAPIHandler struct {
	logger   *zap.Logger
	spec     []byte
	specJSON []byte
}

// NewOpenAPIHandler parses the embedded document once
func NewOpenAPIHandler(logger *zap.Logger) (*OpenAPIHandler, error) {
	specJSON, err := yamlToJSON(openAPISpec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI spec: %w", err)
	}

	return &OpenAPIHandler{
		logger:   logger,
		spec:     openAPISpec,
		specJSON: specJSON,
	}, nil
}

// ServeOpenAPISpec serves the OpenAPI specification in YAML format
func (h *OpenAPIHandler) ServeOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	h.write(w, "application/x-yaml", h.spec)
}

// ServeOpenAPIJSON serves the OpenAPI specification in JSON format
func (h *OpenAPIHandler) ServeOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	h.write(w, "application/json", h.specJSON)
}

func (h *OpenAPIHandler) write(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Debug("Failed to write OpenAPI document", zap.Error(err))
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
