package store

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Dao struct {
	db *gorm.DB
}

// NewDao opens dsn with the named dialect ("mysql" or "sqlite") and migrates the tables.
func NewDao(dialect, dsn string) (*Dao, error) {
	var dialector gorm.Dialector
	switch dialect {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("db dialect(%s) is not supported", dialect)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open db err: %w", err)
	}
	if err := db.AutoMigrate(&Candidate{}, &SubmittedBundle{}); err != nil {
		return nil, fmt.Errorf("migrate db err: %w", err)
	}
	return &Dao{db: db}, nil
}

func (dao *Dao) SaveCandidate(candidate *Candidate) error {
	return dao.db.Create(candidate).Error
}

func (dao *Dao) SaveSubmittedBundle(bundle *SubmittedBundle) error {
	return dao.db.Create(bundle).Error
}

func (dao *Dao) SelectCandidate(id string) ([]*Candidate, error) {
	candidates := make([]*Candidate, 0)
	res := dao.db.Where("id = ?", id).Find(&candidates)
	return candidates, res.Error
}

func (dao *Dao) SelectSubmittedBundle(candidateId string) ([]*SubmittedBundle, error) {
	bundles := make([]*SubmittedBundle, 0)
	res := dao.db.Where("candidate_id = ?", candidateId).Find(&bundles)
	return bundles, res.Error
}

// CountByStage reports how many candidates ended in each stage.
func (dao *Dao) CountByStage() (map[string]int64, error) {
	type row struct {
		Stage string
		Total int64
	}
	rows := make([]*row, 0)
	res := dao.db.Model(&Candidate{}).Select("stage, count(*) as total").Group("stage").Scan(&rows)
	if res.Error != nil {
		return nil, res.Error
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Stage] = r.Total
	}
	return counts, nil
}
