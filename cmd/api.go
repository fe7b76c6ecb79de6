package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wrapped/internal/services"
	"github.com/desertthunder/wrapped/internal/shared"
)

// APIGet makes a direct GET request to the backend
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	return r.apiCall(ctx, http.MethodGet, cmd.StringArg("path"), nil, cmd.Bool("public"), !cmd.Bool("json"))
}

// APIPost makes a direct POST request to the backend
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	data := cmd.String("data")
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}

	var jsonTest any
	if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}

	return r.apiCall(ctx, http.MethodPost, cmd.StringArg("path"), json.RawMessage(data), cmd.Bool("public"), true)
}

// APIDelete makes a direct DELETE request to the backend
func (r *Runner) APIDelete(ctx context.Context, cmd *cli.Command) error {
	return r.apiCall(ctx, http.MethodDelete, cmd.StringArg("path"), nil, false, true)
}

func (r *Runner) apiCall(ctx context.Context, method, path string, body any, public, pretty bool) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	r.logger.Info("api request", "method", method, "path", path, "public", public)

	gw := r.backend.Gateway()
	var (
		resp *services.APIResponse
		err  error
	)
	if public {
		resp, err = gw.CallPublic(ctx, method, path, body)
	} else {
		resp, err = gw.Call(ctx, method, path, body)
	}
	if err != nil {
		return err
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}
	if len(resp.Body) == 0 {
		return r.writePlain("%d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return r.writePlain("%s\n", resp.Body)
}
