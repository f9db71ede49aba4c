package models

type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
	// Creation timestamp (ns). Messages are immutable after creation;
	// the only mutation is removal.
	TS int64 `json:"ts"`
	// Seq is the store-assigned append sequence. The persistence mirror
	// keys on it so reload order always matches append order.
	Seq uint64 `json:"seq"`
}
