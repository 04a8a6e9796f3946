package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/multiview/internal/repository/connection"
	"github.com/sharetube/multiview/internal/service/session"
	"github.com/sourcegraph/conc/pool"
)

var ErrValidationError = errors.New("validation error")

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type EmptyInput struct{}

func (c controller) writeToClient(ctx context.Context, client *connection.Client, output *Output) error {
	if err := client.WriteJSON(output); err != nil {
		c.logger.DebugContext(ctx, "failed to write to client", "client_id", client.Id, "error", err)
		return fmt.Errorf("failed to write to client %s: %w", client.Id, err)
	}

	return nil
}

// broadcast writes output to every client concurrently and returns the combined write errors.
func (c controller) broadcast(ctx context.Context, clients []*connection.Client, output *Output) error {
	p := pool.New().WithErrors().WithContext(ctx)
	for _, client := range clients {
		p.Go(func(ctx context.Context) error {
			return c.writeToClient(ctx, client, output)
		})
	}

	return p.Wait()
}

func (c controller) broadcastPlayersUpdated(ctx context.Context, resp *session.PlayersUpdatedResponse) error {
	return c.broadcast(ctx, resp.Clients, &Output{
		Type: "PLAYERS_UPDATED",
		Payload: map[string]any{
			"players":   resp.State.Players,
			"sync_seek": resp.State.SyncSeek,
		},
	})
}

func (c controller) validateInput(input any) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("%w: %w", ErrValidationError, validationErrors)
	}

	return nil
}
