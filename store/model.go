package store

const (
	StageDeserialize = "deserialize"
	StageDecode      = "decode"
	StageResolve     = "resolve"
	StageSize        = "size"
	StageBuild       = "build"
	StageSubmit      = "submit"
	StageSubmitted   = "submitted"
)

type Candidate struct {
	Id               string `gorm:"primaryKey;type:varchar(36);not null"`
	Signature        string `gorm:"type:varchar(100);not null;index"`
	Decoder          string `gorm:"type:varchar(32)"`
	Pool             string `gorm:"type:varchar(48)"`
	AmountIn         uint64 `gorm:"type:bigint(20)"`
	MinimumAmountOut uint64 `gorm:"type:bigint(20)"`
	Stage            string `gorm:"type:varchar(16);not null"`
	Reason           string `gorm:"type:varchar(255)"`
	ReceiveTime      uint64 `gorm:"type:bigint(20);not null"`
	FinishTime       uint64 `gorm:"type:bigint(20);not null"`
}

type SubmittedBundle struct {
	CandidateId    string `gorm:"primaryKey;type:varchar(36);not null"`
	Token          string `gorm:"type:varchar(48);not null"`
	FrontRunAmount uint64 `gorm:"type:bigint(20);not null"`
	ReserveIn      uint64 `gorm:"type:bigint(20);not null"`
	ReserveOut     uint64 `gorm:"type:bigint(20);not null"`
	Tip            string `gorm:"type:varchar(48);not null"`
	BlockEngine    string `gorm:"type:varchar(128);not null"`
	BundleId       string `gorm:"type:varchar(100)"`
	FrontSignature string `gorm:"type:varchar(100);not null"`
	BackSignature  string `gorm:"type:varchar(100);not null"`
	Error          string `gorm:"type:varchar(255)"`
	SendTime       uint64 `gorm:"type:bigint(20);not null"`
	ResponseTime   uint64 `gorm:"type:bigint(20);not null"`
}
