package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"solar-pipeline/domain/dto"
	"solar-pipeline/domain/model"
	"solar-pipeline/domain/repository"
	"solar-pipeline/infrastructure/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"
	"google.golang.org/api/youtube/v3"
)

const (
	searchPageSize  = 50
	commentPageSize = 100
	// StatisticsBatchSize is the most ids videos.list accepts per call.
	StatisticsBatchSize = 50
)

// Client represents YouTube API client
type Client struct {
	service *youtube.Service
	limiter *rate.Limiter
}

// Config represents YouTube API configuration
type Config struct {
	APIKey       string `json:"api_key"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// RequestsPerSecond paces every call; zero means unlimited.
	RequestsPerSecond float64 `json:"requests_per_second"`
	// Endpoint overrides the API base URL.
	Endpoint string `json:"endpoint"`
}

// NewYouTubeClient creates a new YouTube API client
func NewYouTubeClient(ctx context.Context, config *Config) (repository.IYouTube, error) {
	var httpClient *http.Client
	if (config.AccessToken == "" || config.RefreshToken == "") && config.APIKey != "" {
		// API key only mode (read-only)
		keyClient, err := htransport.NewClient(ctx, option.WithAPIKey(config.APIKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube HTTP client: %w", err)
		}
		httpClient = keyClient
	} else {
		oauth2Config := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Scopes:       []string{youtube.YoutubeReadonlyScope},
			Endpoint:     google.Endpoint,
		}
		token := &oauth2.Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(-1 * time.Minute), // Force refresh on first use
		}
		httpClient = oauth2Config.Client(ctx, token)
	}

	opts := []option.ClientOption{option.WithHTTPClient(wrapTransport(httpClient))}
	if config.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(config.Endpoint))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	c := &Client{service: service}
	if config.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	return c, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// ChannelIDByHandle looks a channel up by its @handle.
func (c *Client) ChannelIDByHandle(ctx context.Context, handle string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	res, err := c.service.Channels.List([]string{"id"}).ForHandle(handle).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to look up channel by handle %q: %w", handle, err)
	}
	if len(res.Items) == 0 {
		return "", nil
	}
	return res.Items[0].Id, nil
}

// SearchChannelID runs a channel-typed search and returns the first hit.
func (c *Client) SearchChannelID(ctx context.Context, query string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	res, err := c.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("channel").
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to search channel %q: %w", query, err)
	}
	for _, item := range res.Items {
		if item.Id != nil && item.Id.ChannelId != "" {
			return item.Id.ChannelId, nil
		}
		if item.Snippet != nil && item.Snippet.ChannelId != "" {
			return item.Snippet.ChannelId, nil
		}
	}
	return "", nil
}

// SearchVideos fetches one page of video hits.
func (c *Client) SearchVideos(ctx context.Context, req *dto.VideoSearchRequest) (*dto.VideoSearchPage, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	call := c.service.Search.List([]string{"snippet"}).Type("video")

	if req.MaxResults > 0 && req.MaxResults <= searchPageSize {
		call = call.MaxResults(req.MaxResults)
	} else {
		call = call.MaxResults(searchPageSize)
	}
	if req.Q != "" {
		call = call.Q(req.Q)
	}
	if req.ChannelID != "" {
		call = call.ChannelId(req.ChannelID)
	}
	if req.Order != "" {
		call = call.Order(req.Order)
	}
	if req.PageToken != "" {
		call = call.PageToken(req.PageToken)
	}
	if req.PublishedAfter != "" {
		call = call.PublishedAfter(req.PublishedAfter)
	}
	if req.PublishedBefore != "" {
		call = call.PublishedBefore(req.PublishedBefore)
	}

	res, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search videos: %w", err)
	}

	page := &dto.VideoSearchPage{
		Items:         make([]model.VideoCandidate, 0, len(res.Items)),
		NextPageToken: res.NextPageToken,
	}
	if res.PageInfo != nil {
		page.TotalResults = res.PageInfo.TotalResults
	}
	for _, item := range res.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		title := ""
		if item.Snippet != nil {
			title = item.Snippet.Title
		}
		page.Items = append(page.Items, model.VideoCandidate{ID: item.Id.VideoId, Title: title})
	}
	return page, nil
}

// VideoStatistics fetches view and comment counters for up to 50 videos.
func (c *Client) VideoStatistics(ctx context.Context, ids []string) ([]model.VideoStatistics, error) {
	if len(ids) > StatisticsBatchSize {
		return nil, fmt.Errorf("videos.list accepts at most %d ids, got %d", StatisticsBatchSize, len(ids))
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	res, err := c.service.Videos.List([]string{"statistics", "snippet"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get video statistics: %w", err)
	}

	stats := make([]model.VideoStatistics, 0, len(res.Items))
	for _, video := range res.Items {
		s := model.VideoStatistics{ID: video.Id}
		if video.Snippet != nil {
			s.Title = video.Snippet.Title
		}
		if video.Statistics != nil {
			s.HasStatistics = true
			s.ViewCount = video.Statistics.ViewCount
			s.CommentCount = video.Statistics.CommentCount
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// CommentThreads fetches one page of top-level threads ordered by relevance.
func (c *Client) CommentThreads(ctx context.Context, videoID, pageToken string) (*dto.CommentThreadPage, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	ctx, rec := withRawBody(ctx)
	call := c.service.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		MaxResults(commentPageSize).
		TextFormat("plainText").
		Order("relevance")
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	res, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get comment threads for video %s: %w", videoID, err)
	}
	raws, err := rec.items(len(res.Items))
	if err != nil {
		return nil, fmt.Errorf("failed to keep raw comment threads for video %s: %w", videoID, err)
	}

	page := &dto.CommentThreadPage{
		Items:         make([]model.CommentThread, 0, len(res.Items)),
		NextPageToken: res.NextPageToken,
	}
	for i, item := range res.Items {
		page.Items = append(page.Items, convertToCommentThread(item, raws[i]))
	}
	return page, nil
}

// CommentReplies fetches one page of replies to a top-level comment.
func (c *Client) CommentReplies(ctx context.Context, parentID, pageToken string) (*dto.CommentReplyPage, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	ctx, rec := withRawBody(ctx)
	call := c.service.Comments.List([]string{"snippet"}).
		ParentId(parentID).
		MaxResults(commentPageSize).
		TextFormat("plainText")
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	res, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get replies for comment %s: %w", parentID, err)
	}
	raws, err := rec.items(len(res.Items))
	if err != nil {
		return nil, fmt.Errorf("failed to keep raw replies for comment %s: %w", parentID, err)
	}

	page := &dto.CommentReplyPage{
		Items:         make([]model.Comment, 0, len(res.Items)),
		NextPageToken: res.NextPageToken,
	}
	for i, item := range res.Items {
		page.Items = append(page.Items, convertToComment(item, raws[i]))
	}
	return page, nil
}

// convertToCommentThread reads the fields the harvester needs from item and
// keeps raw, the object as the API sent it.
func convertToCommentThread(item *youtube.CommentThread, raw json.RawMessage) model.CommentThread {
	thread := model.CommentThread{ID: item.Id, Raw: raw}
	if item.Snippet == nil {
		logger.GetLogger().WithField("threadId", item.Id).Warn("Comment thread without snippet")
		return thread
	}
	thread.VideoID = item.Snippet.VideoId
	thread.TotalReplyCount = item.Snippet.TotalReplyCount
	if item.Snippet.TopLevelComment != nil {
		thread.TopLevelComment = convertToComment(item.Snippet.TopLevelComment, topLevelComment(raw))
	}
	return thread
}

func convertToComment(item *youtube.Comment, raw json.RawMessage) model.Comment {
	comment := model.Comment{ID: item.Id, Raw: raw}
	if s := item.Snippet; s != nil {
		comment.ParentID = s.ParentId
		comment.AuthorDisplayName = s.AuthorDisplayName
		comment.TextDisplay = s.TextDisplay
		comment.TextOriginal = s.TextOriginal
		comment.PublishedAt = s.PublishedAt
		comment.UpdatedAt = s.UpdatedAt
		comment.LikeCount = s.LikeCount
		if s.AuthorChannelId != nil {
			comment.AuthorChannelID = s.AuthorChannelId.Value
		}
	}
	return comment
}
