package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatRepo struct {
	db *pgxpool.Pool
}

func NewChatRepo(db *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{db: db}
}

// DeleteConversation removes the messages exchanged by two users in both directions.
func (r *ChatRepo) DeleteConversation(ctx context.Context, driverID, riderID string) (int64, error) {
	const op = "ChatRepo.DeleteConversation"
	query := `
		DELETE FROM chat_messages
		WHERE (sender_id = $1 AND receiver_id = $2)
			OR (sender_id = $2 AND receiver_id = $1);`

	tag, err := TxorDB(ctx, r.db).Exec(ctx, query, driverID, riderID)
	if err != nil {
		return 0, failed(ctx, op, err)
	}
	return tag.RowsAffected(), nil
}
