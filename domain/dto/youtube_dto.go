package dto

import "solar-pipeline/domain/model"

// VideoSearchRequest maps onto one search.list call.
type VideoSearchRequest struct {
	Q               string `json:"q,omitempty"`
	ChannelID       string `json:"channel_id,omitempty"`
	Order           string `json:"order,omitempty"` // date, relevance
	MaxResults      int64  `json:"max_results,omitempty"`
	PageToken       string `json:"page_token,omitempty"`
	PublishedAfter  string `json:"published_after,omitempty"`
	PublishedBefore string `json:"published_before,omitempty"`
}

// VideoSearchPage holds the video hits of one search page. Hits without a
// video id are already removed.
type VideoSearchPage struct {
	Items         []model.VideoCandidate `json:"items"`
	NextPageToken string                 `json:"next_page_token,omitempty"`
	TotalResults  int64                  `json:"total_results"`
}

type CommentThreadPage struct {
	Items         []model.CommentThread `json:"items"`
	NextPageToken string                `json:"next_page_token,omitempty"`
}

type CommentReplyPage struct {
	Items         []model.Comment `json:"items"`
	NextPageToken string          `json:"next_page_token,omitempty"`
}
