package service

import (
	"errors"

	"github.com/library-lending-engine/internal/domain/fine"
	"github.com/library-lending-engine/internal/domain/item"
	"github.com/library-lending-engine/internal/domain/lending"
	"github.com/library-lending-engine/internal/domain/member"
)

// IsNotFound reports whether err names an item, member, transaction or fine that does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, item.ErrItemNotFound{}) ||
		errors.Is(err, member.ErrMemberNotFound{}) ||
		errors.Is(err, lending.ErrTransactionNotFound{}) ||
		errors.Is(err, fine.ErrFineNotFound{})
}
