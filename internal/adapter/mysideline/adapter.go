package mysideline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"CarnivalSync/internal/adapter"
	"CarnivalSync/internal/config"
	"CarnivalSync/internal/interfaces"
	"CarnivalSync/internal/model"
	"CarnivalSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// SourceName 真实 MySideline 采集源名称
const SourceName = "mysideline"

func init() {
	adapter.Register(SourceName, NewAdapter)
}

// Adapter 通过 MySideline 搜索接口拉取 Masters 赛事
type Adapter struct {
	cfg        *config.MySidelineConfig
	httpClient *http.Client
	logger     *logrus.Logger
	retryDelay time.Duration
}

func NewAdapter(cfg *config.MySidelineConfig, logger *logrus.Logger) interfaces.EventSource {
	return NewAdapterWithClient(cfg, httpclient.NewHTTPClient(cfg, logger), logger)
}

// NewAdapterWithClient 使用指定 HTTP 客户端创建适配器
func NewAdapterWithClient(cfg *config.MySidelineConfig, client *http.Client, logger *logrus.Logger) *Adapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: client,
		logger:     logger,
		retryDelay: time.Second,
	}
}

// Name ========== 实现EventSource接口 ==========
func (a *Adapter) Name() string {
	return SourceName
}

func (a *Adapter) FetchEvents(ctx context.Context) ([]*model.ScrapedEvent, error) {
	searchURL, err := a.searchURL()
	if err != nil {
		return nil, err
	}

	payload, err := a.fetchWithRetry(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	var resp model.MySidelineSearchResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("解析MySideline搜索结果失败: %w", err)
	}

	events := make([]*model.ScrapedEvent, 0, len(resp.Data))
	for _, item := range resp.Data {
		ev := a.convert(item)
		if ev == nil {
			a.logger.WithField("mysideline_id", item.ID).Warn("MySideline条目缺少名称，跳过")
			continue
		}
		events = append(events, ev)
	}
	a.logger.WithFields(logrus.Fields{
		"items":  len(resp.Data),
		"events": len(events),
	}).Info("MySideline拉取完成")
	return events, nil
}

func (a *Adapter) searchURL() (string, error) {
	u, err := url.Parse(strings.TrimRight(a.cfg.BaseURL, "/") + a.cfg.SearchPath)
	if err != nil {
		return "", fmt.Errorf("MySideline地址非法: %w", err)
	}
	q := u.Query()
	if a.cfg.Criteria != "" {
		q.Set("criteria", a.cfg.Criteria)
	}
	if a.cfg.Source != "" {
		q.Set("source", a.cfg.Source)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// fetchWithRetry 传输错误与 5xx 重试，4xx 直接返回
func (a *Adapter) fetchWithRetry(ctx context.Context, target string) ([]byte, error) {
	attempts := a.cfg.RetryCount + 1
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.retryDelay * time.Duration(i)):
			}
		}
		body, retryable, err := a.fetchOnce(ctx, target)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		a.logger.WithError(err).WithField("attempt", i+1).Warn("MySideline请求失败，准备重试")
	}
	return nil, lastErr
}

func (a *Adapter) fetchOnce(ctx context.Context, target string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, false, fmt.Errorf("构建MySideline请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("请求MySideline失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("读取MySideline响应失败: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, true, fmt.Errorf("MySideline返回状态码%d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("MySideline返回状态码%d", resp.StatusCode)
	}
	return body, false, nil
}

// convert 将搜索条目转换为通用 ScrapedEvent；无名称的条目返回 nil
func (a *Adapter) convert(item model.MySidelineItem) *model.ScrapedEvent {
	title := strings.TrimSpace(item.Name)
	if title == "" {
		return nil
	}
	date := item.Date
	if strings.TrimSpace(date) == "" {
		date = item.StartDate
	}
	address := joinNonEmpty(", ",
		item.Venue.Name,
		item.Venue.Address,
		item.Venue.Suburb,
		joinNonEmpty(" ", item.Venue.State, item.Venue.Postcode),
	)
	registration := item.Registration.URL
	if registration == "" && item.ID != "" {
		registration = strings.TrimRight(a.cfg.BaseURL, "/") + "/register/" + url.PathEscape(item.ID)
	}

	return &model.ScrapedEvent{
		MySidelineID:          item.ID,
		MySidelineTitle:       title,
		MySidelineDate:        date,
		MySidelineAddress:     address,
		Title:                 title,
		Date:                  date,
		LocationAddress:       address,
		LocationSuburb:        item.Venue.Suburb,
		LocationPostcode:      item.Venue.Postcode,
		LocationLatitude:      item.Venue.Lat,
		LocationLongitude:     item.Venue.Lng,
		State:                 item.Venue.State,
		OrganiserContactName:  item.Contact.Name,
		OrganiserContactEmail: item.Contact.Email,
		OrganiserContactPhone: item.Contact.Phone,
		Description:           item.Description,
		RegistrationLink:      registration,
		ClubLogoURL:           item.Image,
		SocialMediaFacebook:   item.Social.Facebook,
		SocialMediaInstagram:  item.Social.Instagram,
		SocialMediaWebsite:    item.Social.Website,
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
