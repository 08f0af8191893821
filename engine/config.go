package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights 是三个打分来源的融合权重。
// 这是相对乘数，不要求加和为 1——融合分只用于相对排序，
// 不是校准过的概率。
type Weights struct {
	Collaborative float64 `yaml:"collaborative" json:"collaborative"`
	Content       float64 `yaml:"content" json:"content"`
	Popularity    float64 `yaml:"popularity" json:"popularity"`
}

// Config 是引擎的全部可调参数（支持 YAML 加载）。
type Config struct {
	// Weights 融合权重，默认 (0.4, 0.4, 0.2)
	Weights Weights `yaml:"weights" json:"weights"`

	// LearningRate 偏好更新学习率，默认 0.1
	LearningRate float64 `yaml:"learning_rate" json:"learning_rate"`

	// DecayFactor 偏好衰减因子，默认 0.95
	DecayFactor float64 `yaml:"decay_factor" json:"decay_factor"`

	// MinSimilarity 相似度阈值（协同/内容共用），默认 0.3
	MinSimilarity float64 `yaml:"min_similarity" json:"min_similarity"`

	// LikedThreshold 协同打分中"喜欢"的判定阈值，默认 0.5
	LikedThreshold float64 `yaml:"liked_threshold" json:"liked_threshold"`

	// TopKSimilarUsers 协同打分参与投票的相似用户数，默认 50
	TopKSimilarUsers int `yaml:"top_k_similar_users" json:"top_k_similar_users"`

	// PopularityTopK 热度打分产出的候选数，默认 10
	PopularityTopK int `yaml:"popularity_top_k" json:"popularity_top_k"`

	// MaxRecommendations 最终返回的推荐数上限，默认 20
	MaxRecommendations int `yaml:"max_recommendations" json:"max_recommendations"`

	// DiversityWeight 类别配额的超额放行概率，默认 0.2
	DiversityWeight float64 `yaml:"diversity_weight" json:"diversity_weight"`

	// InteractionLogSize 交互日志容量，默认 1000
	InteractionLogSize int `yaml:"interaction_log_size" json:"interaction_log_size"`

	// PersistQueueSize 异步落盘队列容量，默认 256
	PersistQueueSize int `yaml:"persist_queue_size" json:"persist_queue_size"`

	// FallbackIDs 是人工挑选的保底体验列表；为空时初始化阶段
	// 用热度 Top 候选补齐
	FallbackIDs []string `yaml:"fallback_ids" json:"fallback_ids"`

	// FilterRules 是运营侧的 CEL 剔除规则（命中即剔除）
	FilterRules []string `yaml:"filter_rules" json:"filter_rules"`

	// RandomSeed 多样性随机源的种子；0 表示按时间播种
	RandomSeed int64 `yaml:"random_seed" json:"random_seed"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Collaborative: 0.4,
			Content:       0.4,
			Popularity:    0.2,
		},
		LearningRate:       0.1,
		DecayFactor:        0.95,
		MinSimilarity:      0.3,
		LikedThreshold:     0.5,
		TopKSimilarUsers:   50,
		PopularityTopK:     10,
		MaxRecommendations: 20,
		DiversityWeight:    0.2,
		InteractionLogSize: 1000,
		PersistQueueSize:   256,
	}
}

// LoadConfig 从 YAML 文件加载配置，未出现的字段取默认值。
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize 把非法/缺省字段拉回默认值。
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Weights.Collaborative <= 0 && c.Weights.Content <= 0 && c.Weights.Popularity <= 0 {
		c.Weights = def.Weights
	}
	if c.LearningRate <= 0 {
		c.LearningRate = def.LearningRate
	}
	if c.DecayFactor <= 0 || c.DecayFactor > 1 {
		c.DecayFactor = def.DecayFactor
	}
	if c.MinSimilarity <= 0 {
		c.MinSimilarity = def.MinSimilarity
	}
	if c.LikedThreshold <= 0 {
		c.LikedThreshold = def.LikedThreshold
	}
	if c.TopKSimilarUsers <= 0 {
		c.TopKSimilarUsers = def.TopKSimilarUsers
	}
	if c.PopularityTopK <= 0 {
		c.PopularityTopK = def.PopularityTopK
	}
	if c.MaxRecommendations <= 0 {
		c.MaxRecommendations = def.MaxRecommendations
	}
	if c.DiversityWeight < 0 {
		c.DiversityWeight = 0
	}
	if c.InteractionLogSize <= 0 {
		c.InteractionLogSize = def.InteractionLogSize
	}
	if c.PersistQueueSize <= 0 {
		c.PersistQueueSize = def.PersistQueueSize
	}
}
