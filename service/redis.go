package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/DrMamtaSaini/pixflow-design-studio/config"
	"github.com/DrMamtaSaini/pixflow-design-studio/model"
	"github.com/DrMamtaSaini/pixflow-design-studio/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "pixflow:"

// RedisService 处理结果缓存，按源图 MD5 + 参数作键
type RedisService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisService(cfg *config.RedisConfig) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisService{
		client: client,
		ttl:    cfg.TTL,
	}
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetBytes 读取二进制结果，未命中返回 nil, nil
func (s *RedisService) GetBytes(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // 缓存未命中
		}
		return nil, err
	}
	return data, nil
}

// SetBytes 写入二进制结果
func (s *RedisService) SetBytes(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, keyPrefix+key, data, s.ttl).Err()
}

// GetOCRResult 从缓存获取识别结果
func (s *RedisService) GetOCRResult(ctx context.Context, key string) (*model.OCRResult, error) {
	data, err := s.GetBytes(ctx, key)
	if err != nil || data == nil {
		return nil, err
	}

	var result model.OCRResult
	if err := json.Unmarshal(data, &result); err != nil {
		utils.Logger.Error("failed to unmarshal ocr result",
			zap.String("key", key), zap.Error(err))
		return nil, err
	}

	return &result, nil
}

// SetOCRResult 设置识别结果到缓存
func (s *RedisService) SetOCRResult(ctx context.Context, key string, result *model.OCRResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.SetBytes(ctx, key, data)
}

func (s *RedisService) Close() error {
	return s.client.Close()
}
