package db

// Validator is merged on every refresh, only the fields listed in ValidatorMutableColumns are overwritten on conflict.
// Epochs are stored as int64, the far future epoch (2^64-1) is stored as -1.
type Validator struct {
	Index                      uint64  `gorm:"column:idx;primaryKey;autoIncrement:false"`
	Balance                    uint64  `gorm:"NOT NULL"`
	Status                     string  `gorm:"NOT NULL;size:32"`
	Pubkey                     string  `gorm:"NOT NULL;size:98;index:idx_validator_pubkey"`
	WithdrawalCredentials      string  `gorm:"NOT NULL;size:66"`
	EffectiveBalance           uint64  `gorm:"NOT NULL"`
	Slashed                    bool    `gorm:"NOT NULL"`
	ActivationEligibilityEpoch int64   `gorm:"NOT NULL"`
	ActivationEpoch            int64   `gorm:"NOT NULL"`
	ExitEpoch                  int64   `gorm:"NOT NULL"`
	WithdrawableEpoch          int64   `gorm:"NOT NULL"`
	DepositTransaction         *string `gorm:"size:64;index:idx_validator_deposit_transaction"`
}

func (*Validator) TableName() string {
	return "validators"
}

var ValidatorMutableColumns = []string{
	"balance",
	"status",
	"withdrawal_credentials",
	"effective_balance",
	"slashed",
}
