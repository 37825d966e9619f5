// QuizDeck - Quiz Creation and Live Hosting Platform
// Copyright 2026 QuizDeck Contributors
// SPDX-License-Identifier: MPL-2.0
// https://github.com/quizdeck/quizdeck

package api

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/quizdeck/quizdeck/internal/logging"
	"github.com/quizdeck/quizdeck/internal/version"
)

// buildOpenAPI generates the OpenAPI document from the route table.
// Groups with IncludeInSchema false never appear here, so internal
// endpoints stay undocumented while remaining routable.
func buildOpenAPI(groups []RouteGroup) map[string]any {
	paths := make(map[string]any)

	for _, g := range groups {
		if !g.IncludeInSchema {
			continue
		}
		for _, op := range g.Operations {
			full := "/api/v1" + g.Prefix + strings.TrimSuffix(op.Path, "/")
			if op.Path == "/" {
				full = "/api/v1" + g.Prefix + "/"
			}

			item, _ := paths[full].(map[string]any)
			if item == nil {
				item = make(map[string]any)
			}
			item[strings.ToLower(op.Method)] = map[string]any{
				"summary": op.Summary,
				"tags":    g.Tags,
				"responses": map[string]any{
					"default": map[string]any{"description": "API response envelope"},
				},
			}
			paths[full] = item
		}
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "QuizDeck API",
			"version": version.Version,
		},
		"paths": paths,
	}
}

// docJSON serves the generated schema at /api/docs/doc.json.
func docJSON(groups []RouteGroup) http.HandlerFunc {
	doc, err := json.Marshal(buildOpenAPI(groups))
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to marshal OpenAPI document")
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(doc); err != nil {
			logging.Warn().Err(err).Msg("failed to write OpenAPI document")
		}
	}
}
