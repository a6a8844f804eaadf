package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/shopadmin/pkg/errors"
)

// TokenStore Token黑名单存储
// 设计说明：
// 1. 后台不签发Token(由统一的身份服务负责),但要能主动吊销
// 2. 管理员被停用或凭证泄露时,把Token加入黑名单立即失效
// 3. Key设计：blacklist:{token},过期时间与Token有效期一致,
//    到期自动删除,无需手动清理
type TokenStore struct {
	client *redis.Client
}

// NewTokenStore 创建Token黑名单存储
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// AddToBlacklist 将Token加入黑名单
// 使用场景：
// 1. 管理员登出
// 2. Token泄露后强制失效
// 3. 管理员账号被停用后强制所有Token失效
func (s *TokenStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	key := fmt.Sprintf("blacklist:%s", token)

	if err := s.client.Set(ctx, key, "revoked", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "添加Token到黑名单失败")
	}

	return nil
}

// IsInBlacklist 检查Token是否在黑名单中
func (s *TokenStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	key := fmt.Sprintf("blacklist:%s", token)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "检查黑名单失败")
	}

	return exists > 0, nil
}
