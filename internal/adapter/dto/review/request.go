package review

import "github.com/meetwise-team/meetwise/internal/domain/entities"

// UpdateItemsRequest carries a reviewer's edited item list plus the version
// they read. The server rejects stale versions so two tabs cannot silently
// overwrite each other.
type UpdateItemsRequest struct {
	LockVersion int                       `json:"lock_version" validate:"required,min=1"`
	Items       []entities.ProposedChange `json:"items" validate:"required,min=1"`
}

// PublishRequest triggers the merge of the accepted items
type PublishRequest struct {
	LockVersion int `json:"lock_version" validate:"required,min=1"`
}

// ListRecordsRequest represents query parameters for listing canonical records
type ListRecordsRequest struct {
	Kind   string `query:"kind" validate:"omitempty,oneof=action_item decision risk"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}
