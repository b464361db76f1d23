package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/spotx/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet performs a GET request against a path relative to the API root, or an absolute URL.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	return r.apiRequest(ctx, cmd, http.MethodGet)
}

// APIPost performs a POST request with the --data body.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	return r.apiRequest(ctx, cmd, http.MethodPost)
}

// APIPut performs a PUT request with the --data body.
func (r *Runner) APIPut(ctx context.Context, cmd *cli.Command) error {
	return r.apiRequest(ctx, cmd, http.MethodPut)
}

// APIDelete performs a DELETE request.
func (r *Runner) APIDelete(ctx context.Context, cmd *cli.Command) error {
	return r.apiRequest(ctx, cmd, http.MethodDelete)
}

func (r *Runner) apiRequest(ctx context.Context, cmd *cli.Command, method string) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	params, err := parseParams(cmd.StringSlice("param"))
	if err != nil {
		return err
	}
	payload, err := parsePayload(cmd.String("data"))
	if err != nil {
		return err
	}

	if err := r.connect(); err != nil {
		return err
	}

	r.logger.Debug("api request", "method", method, "path", path)

	result, err := r.spotify.Client().Do(ctx, method, path, params, payload)
	if err != nil {
		return err
	}
	if result == nil {
		return r.writePlain("%s\n", r.palette.Success(fmt.Sprintf("%s %s", method, path)))
	}
	return r.writeJSON(result, cmd.Bool("pretty"))
}

// parseParams turns repeated key=value flags into query parameters. Repeated keys are comma joined.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: parameter %q is not key=value", shared.ErrInvalidArgument, pair)
		}
		if prev, exists := params[key]; exists {
			value = fmt.Sprintf("%v,%s", prev, value)
		}
		params[key] = value
	}
	return params, nil
}

// parsePayload decodes the --data flag, which must be a JSON object.
func parsePayload(data string) (map[string]any, error) {
	if strings.TrimSpace(data) == "" {
		return nil, nil
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, fmt.Errorf("%w: --data must be a JSON object: %v", shared.ErrInvalidInput, err)
	}
	return payload, nil
}
