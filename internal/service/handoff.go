package service

import (
	"context"
	"eduspark_backend/internal/model"
	"eduspark_backend/internal/util"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const profileParamsKeyPrefix = "learner_profile_params:"

// ProfileParamsStore 学习者画像参数的交接存储。写入后由内容生成消费方
// 恰好消费一次，读取即清除，未消费的条目到期自动失效。
type ProfileParamsStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProfileParamsStore(rdb *redis.Client) *ProfileParamsStore {
	return &ProfileParamsStore{rdb: rdb, ttl: 30 * time.Minute}
}

func (s *ProfileParamsStore) key(scope string) string {
	return profileParamsKeyPrefix + scope
}

func (s *ProfileParamsStore) Put(ctx context.Context, scope string, params model.LearnerProfileParams) error {
	data, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(scope), data, s.ttl).Err()
}

// Consume 取出并清除，读取与删除为单条原子命令
func (s *ProfileParamsStore) Consume(ctx context.Context, scope string) (*model.LearnerProfileParams, error) {
	data, err := s.rdb.GetDel(ctx, s.key(scope)).Bytes()
	if err == redis.Nil {
		return nil, util.ErrProfileParamsNotFound
	}
	if err != nil {
		return nil, err
	}

	var params model.LearnerProfileParams
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

// UserScope 已登录学习者的交接键作用域
func UserScope(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}
