package anthropic

import (
	"context"
	"errors"
	"net"

	anthropic "github.com/anthropics/anthropic-sdk-go"
)

func asAPIError(err error) (*anthropic.Error, bool) {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return apierr, true
	}
	return nil, false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
