package memory

import (
	"errors"

	"github.com/tillgreens/microfarm/internal/domain"
)

func domainTxClosedErr() error {
	return errors.New(domain.ErrMsgTxClosed)
}
