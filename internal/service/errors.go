package service

import (
	"errors"

	"connectrpc.com/connect"
	"github.com/rrazong/leaderz-backend/internal/storage"
)

// storageError maps a storage failure to the Connect code callers see.
func storageError(err error) *connect.Error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}
