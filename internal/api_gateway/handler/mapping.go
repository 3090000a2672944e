package handler

import (
	"time"

	"github.com/library-lending-engine/internal/domain/fine"
	"github.com/library-lending-engine/internal/domain/history"
	"github.com/library-lending-engine/internal/domain/item"
	"github.com/library-lending-engine/internal/domain/lending"
	"github.com/library-lending-engine/internal/domain/member"
)

func mapItemToResponse(it *item.Item) ItemResponse {
	return ItemResponse{
		ID:        it.ID.String(),
		Title:     it.Title,
		Author:    it.Author,
		Category:  it.Category,
		Status:    string(it.Status),
		CreatedAt: it.CreatedAt.Format(time.RFC3339),
		UpdatedAt: it.UpdatedAt.Format(time.RFC3339),
	}
}

func mapMemberToResponse(m *member.Member) MemberResponse {
	return MemberResponse{
		ID:        m.ID.String(),
		Name:      m.Name,
		Email:     m.Email,
		Status:    string(m.Status),
		FinesDue:  m.FinesDue.StringFixed(2),
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
		UpdatedAt: m.UpdatedAt.Format(time.RFC3339),
	}
}

func mapTransactionToResponse(t *lending.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:         t.ID.String(),
		ItemID:     t.ItemID.String(),
		MemberID:   t.MemberID.String(),
		Status:     string(t.Status),
		BorrowedAt: t.BorrowedAt.Format(time.RFC3339),
		DueAt:      t.DueAt.Format(time.RFC3339),
	}
	if t.ReturnedAt != nil {
		resp.ReturnedAt = t.ReturnedAt.Format(time.RFC3339)
	}
	return resp
}

func mapTransactions(txns []*lending.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, mapTransactionToResponse(t))
	}
	return out
}

func mapFineToResponse(f *fine.Fine) FineResponse {
	resp := FineResponse{
		ID:        f.ID.String(),
		MemberID:  f.MemberID.String(),
		Amount:    f.Amount.StringFixed(2),
		Reason:    f.Reason,
		Status:    string(f.Status),
		CreatedAt: f.CreatedAt.Format(time.RFC3339),
	}
	if f.TransactionID != nil {
		resp.TransactionID = f.TransactionID.String()
	}
	if f.PaidAt != nil {
		resp.PaidAt = f.PaidAt.Format(time.RFC3339)
	}
	return resp
}

func mapFines(fines []*fine.Fine) []FineResponse {
	out := make([]FineResponse, 0, len(fines))
	for _, f := range fines {
		out = append(out, mapFineToResponse(f))
	}
	return out
}

func mapHistory(events []*history.Event) []HistoryEventResponse {
	out := make([]HistoryEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, HistoryEventResponse{
			EventID:       e.EventID,
			Type:          string(e.Type),
			ItemID:        e.ItemID,
			TransactionID: e.TransactionID,
			FineID:        e.FineID,
			Amount:        e.Amount,
			Status:        e.Status,
			Detail:        e.Detail,
			OccurredAt:    e.OccurredAt.Format(time.RFC3339),
		})
	}
	return out
}
