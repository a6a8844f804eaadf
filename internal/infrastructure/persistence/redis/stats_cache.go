package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/shopadmin/internal/domain/stats"
	apperrors "github.com/xiebiao/shopadmin/pkg/errors"
)

// StatsCache 仪表盘统计缓存
// 设计说明：
// 1. 统计快照是几条聚合SQL的结果,预设区间的命中率很高,
//    用短TTL缓存挡掉仪表盘轮询对MySQL的压力
// 2. Key设计：stats:snapshot:{from}:{to},区间即身份,
//    同一区间的快照天然共享
// 3. 订单状态被后台修改后主动失效,宁可多算一次也不展示旧数
// 4. 缓存故障只降级不报错:读不到就回源,写不进就丢弃
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache 创建统计缓存
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &StatsCache{client: client, ttl: ttl}
}

const statsKeyPrefix = "stats:snapshot:"

func snapshotKey(r stats.Range) string {
	return fmt.Sprintf("%s%d:%d", statsKeyPrefix, r.From.Unix(), r.To.Unix())
}

// GetSnapshot 读取区间的统计快照,未命中返回(nil, nil)
func (c *StatsCache) GetSnapshot(ctx context.Context, r stats.Range) (*stats.Snapshot, error) {
	data, err := c.client.Get(ctx, snapshotKey(r)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "读取统计缓存失败")
	}

	var snapshot stats.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		// 缓存数据损坏按未命中处理,回源覆盖
		return nil, nil
	}
	return &snapshot, nil
}

// SetSnapshot 写入区间的统计快照
func (c *StatsCache) SetSnapshot(ctx context.Context, r stats.Range, snapshot *stats.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return apperrors.Wrap(err, "序列化统计快照失败")
	}

	if err := c.client.Set(ctx, snapshotKey(r), data, c.ttl).Err(); err != nil {
		return apperrors.Wrap(err, "写入统计缓存失败")
	}
	return nil
}

// Invalidate 清空全部统计快照
// 订单状态/删除标记变化后调用,影响哪些区间不可知,全清最稳妥
func (c *StatsCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, statsKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return apperrors.Wrap(err, "扫描统计缓存失败")
	}

	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return apperrors.Wrap(err, "清空统计缓存失败")
	}
	return nil
}
