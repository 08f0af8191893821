package filter

import (
	"context"
	"math"

	"github.com/wanderkit/wanderkit/core"
	"github.com/wanderkit/wanderkit/feature"
)

// GeoRadiusFilter 是地理半径过滤器：剔除距请求位置超过 RadiusKM 的体验。
// 请求没带位置或半径 <= 0 时不启用（全部保留）。
type GeoRadiusFilter struct {
	Index *feature.Index
}

func (f *GeoRadiusFilter) Name() string {
	return "filter.geo"
}

func (f *GeoRadiusFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if rctx == nil || rctx.Location == nil || rctx.RadiusKM <= 0 {
		return false, nil
	}
	if item == nil {
		return true, nil
	}

	e, ok := f.Index.Get(item.ID)
	if !ok {
		// 目录外的候选无法验证位置，启用地理过滤时一律剔除
		return true, nil
	}

	d := haversineKM(rctx.Location.Latitude, rctx.Location.Longitude, e.Latitude, e.Longitude)
	return d > rctx.RadiusKM, nil
}

const earthRadiusKM = 6371.0

// haversineKM 计算两个经纬度点之间的大圆距离（公里）。
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}
