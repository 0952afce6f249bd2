package mappers

import (
	"time"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
	"google.golang.org/protobuf/types/known/structpb"
)

func ToStruct(m map[string]any) (*structpb.Struct, error) {
	return structpb.NewStruct(m)
}

func TelegramUserToMap(u *domain.TelegramUser) map[string]any {
	out := map[string]any{
		"user_id":        u.UserID,
		"username":       u.Username,
		"first_name":     u.FirstName,
		"invites_count":  u.InvitesCount,
		"depth":          u.Depth,
		"trinary_status": string(u.TrinaryStatus),
		"binary_status":  string(u.BinaryStatus),
		"trinary_bill":   u.TrinaryBill,
		"binary_bill":    u.BinaryBill,
		"is_admin":       u.IsAdmin,
		"is_banned":      u.IsBanned,
		"created_at":     formatTime(u.CreatedAt),
	}
	if u.SponsorUserID != nil {
		out["sponsor_user_id"] = *u.SponsorUserID
	}
	return out
}

func MatrixToMap(m *domain.Matrix) map[string]any {
	tree := make([]any, 0, len(m.Tree))
	for _, b := range m.Tree {
		tree = append(tree, map[string]any{
			"node_id":  b.NodeID,
			"children": stringsToList(b.Children),
		})
	}
	display := make([]any, 0, len(m.DisplayTree))
	for _, b := range m.DisplayTree {
		display = append(display, map[string]any{
			"label":    b.Label,
			"children": stringsToList(b.Children),
		})
	}
	return map[string]any{
		"matrix_id":    m.ID,
		"owner_id":     m.OwnerID,
		"status":       string(m.Status),
		"build_type":   string(m.BuildType),
		"tree":         tree,
		"display_tree": display,
		"members":      int64sToList(m.Members),
		"occupied":     m.Occupied(),
		"capacity":     m.Capacity(),
		"archived":     m.Archived,
		"created_at":   formatTime(m.CreatedAt),
	}
}

func DonateToMap(d *domain.Donate) map[string]any {
	legs := make([]any, 0, len(d.Transactions))
	for _, tx := range d.Transactions {
		legs = append(legs, TransactionToMap(tx))
	}
	return map[string]any{
		"donate_id":    d.ID,
		"sender_id":    d.SenderID,
		"matrix_id":    d.MatrixID,
		"build_type":   string(d.BuildType),
		"amount":       d.Amount,
		"is_confirmed": d.IsConfirmed,
		"is_canceled":  d.IsCanceled,
		"created_at":   formatTime(d.CreatedAt),
		"transactions": legs,
	}
}

func TransactionToMap(tx *domain.DonateTransaction) map[string]any {
	return map[string]any{
		"transaction_id": tx.ID,
		"donate_id":      tx.DonateID,
		"recipient_id":   tx.RecipientID,
		"amount":         tx.Amount,
		"is_confirmed":   tx.IsConfirmed,
		"is_canceled":    tx.IsCanceled,
		"created_at":     formatTime(tx.CreatedAt),
	}
}

func CreditsToList(credits []domain.Credit) []any {
	out := make([]any, 0, len(credits))
	for _, c := range credits {
		out = append(out, map[string]any{
			"recipient_id": c.RecipientID,
			"amount":       c.Amount,
		})
	}
	return out
}

func StringsToList(ss []string) []any {
	return stringsToList(ss)
}

func Int64sToList(ids []int64) []any {
	return int64sToList(ids)
}

func stringsToList(ss []string) []any {
	out := make([]any, 0, len(ss))
	for _, s := range ss {
		out = append(out, s)
	}
	return out
}

func int64sToList(ids []int64) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, id)
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
