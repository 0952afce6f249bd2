package domain

import "context"

type Message struct {
	Key   []byte
	Value []byte
}

type SubscriberPort interface {
	Subscribe(ctx context.Context, topic, groupID string) (<-chan Message, error)
}
