package catalog

import (
	"context"
	"fmt"
	"strings"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"

	"github.com/wanderkit/wanderkit/core"
)

// FeastCatalog 是基于 Feast Feature Store 的目录实现（只读）。
//
// Feast 的在线存储是按实体 key 的点查，没有全表扫描；因此目录的
// 体验 ID 全集由调用方提供（通常来自运营配置或离线任务产出）。
//
// 特征视图约定：实体 experience_id，特征名 experience:<field>。
// AddRating 不支持——特征物化是离线管道的职责，返回 NOT_SUPPORTED。
type FeastCatalog struct {
	client *feastsdk.GrpcClient

	// Project 是 Feast 项目名
	Project string

	// IDs 是体验 ID 全集
	IDs []string
}

// 体验特征视图的特征名。
var experienceFeatures = []string{
	"experience:category",
	"experience:price",
	"experience:region",
	"experience:latitude",
	"experience:longitude",
	"experience:rating",
	"experience:duration_minutes",
	"experience:indoor",
	"experience:family_friendly",
	"experience:accessibility_tags",
	"experience:views",
	"experience:bookings",
	"experience:review_count",
}

// NewFeastCatalog 创建 Feast 目录客户端（gRPC，默认端口 6565）。
func NewFeastCatalog(host string, port int, project string, ids []string) (*FeastCatalog, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("create feast grpc client: %w", err)
	}
	return &FeastCatalog{
		client:  client,
		Project: project,
		IDs:     ids,
	}, nil
}

func (c *FeastCatalog) Name() string { return "feast" }

func (c *FeastCatalog) AllExperiences(ctx context.Context) ([]*core.Experience, error) {
	if len(c.IDs) == 0 {
		return []*core.Experience{}, nil
	}
	return c.fetch(ctx, c.IDs)
}

func (c *FeastCatalog) GetExperience(ctx context.Context, id string) (*core.Experience, error) {
	out, err := c.fetch(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, core.ErrExperienceNotFound
	}
	return out[0], nil
}

// AddRating 不支持：在线特征是离线管道物化的，引擎侧只读。
func (c *FeastCatalog) AddRating(ctx context.Context, id string, rating float64) error {
	return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotSupported,
		"catalog: feast backend is read-only")
}

func (c *FeastCatalog) fetch(ctx context.Context, ids []string) ([]*core.Experience, error) {
	entityRows := make([]feastsdk.Row, len(ids))
	for i, id := range ids {
		entityRows[i] = feastsdk.Row{"experience_id": feastsdk.StrVal(id)}
	}

	resp, err := c.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: experienceFeatures,
		Entities: entityRows,
		Project:  c.Project,
	})
	if err != nil {
		return nil, fmt.Errorf("feast get online features: %w", err)
	}

	rows := resp.Rows()
	out := make([]*core.Experience, 0, len(rows))
	for i, row := range rows {
		if i >= len(ids) {
			break
		}
		e := decodeExperience(ids[i], row)
		if e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

// decodeExperience 把一行特征值还原成体验特征向量。
// 没有任何特征值的行视为目录里不存在该体验。
func decodeExperience(id string, row feastsdk.Row) *core.Experience {
	if len(row) == 0 {
		return nil
	}

	e := &core.Experience{ID: id}
	found := false

	if v := stringVal(row, "experience:category"); v != "" {
		e.Category = v
		found = true
	}
	if v, ok := floatVal(row, "experience:price"); ok {
		e.Price = v
		found = true
	}
	if v := stringVal(row, "experience:region"); v != "" {
		e.LocationRegion = v
		found = true
	}
	if v, ok := floatVal(row, "experience:latitude"); ok {
		e.Latitude = v
	}
	if v, ok := floatVal(row, "experience:longitude"); ok {
		e.Longitude = v
	}
	if v, ok := floatVal(row, "experience:rating"); ok {
		e.Rating = v
		e.Stats.Rating = v
	}
	if v, ok := floatVal(row, "experience:duration_minutes"); ok {
		e.DurationMinutes = int(v)
	}
	if v, ok := boolVal(row, "experience:indoor"); ok {
		e.Indoor = v
	}
	if v, ok := boolVal(row, "experience:family_friendly"); ok {
		e.FamilyFriendly = v
	}
	if v := stringVal(row, "experience:accessibility_tags"); v != "" {
		e.AccessibilityTags = splitTags(v)
	}
	if v, ok := floatVal(row, "experience:views"); ok {
		e.Stats.Views = int64(v)
	}
	if v, ok := floatVal(row, "experience:bookings"); ok {
		e.Stats.Bookings = int64(v)
	}
	if v, ok := floatVal(row, "experience:review_count"); ok {
		e.Stats.ReviewCount = int64(v)
	}

	if !found {
		return nil
	}
	return e
}

func stringVal(row feastsdk.Row, name string) string {
	if v, ok := row[name]; ok && v != nil {
		return v.GetStringVal()
	}
	return ""
}

func floatVal(row feastsdk.Row, name string) (float64, bool) {
	v, ok := row[name]
	if !ok || v == nil {
		return 0, false
	}
	switch val := v.Val.(type) {
	case *feasttypes.Value_DoubleVal:
		return val.DoubleVal, true
	case *feasttypes.Value_FloatVal:
		return float64(val.FloatVal), true
	case *feasttypes.Value_Int64Val:
		return float64(val.Int64Val), true
	case *feasttypes.Value_Int32Val:
		return float64(val.Int32Val), true
	default:
		return 0, false
	}
}

func boolVal(row feastsdk.Row, name string) (bool, bool) {
	v, ok := row[name]
	if !ok || v == nil {
		return false, false
	}
	if val, isBool := v.Val.(*feasttypes.Value_BoolVal); isBool {
		return val.BoolVal, true
	}
	return false, false
}

// splitTags 解析逗号分隔的标签串。
func splitTags(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

var _ core.Catalog = (*FeastCatalog)(nil)
