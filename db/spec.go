package db

// Spec records the chain identity the store was synced against.
type Spec struct {
	Name       string `gorm:"primaryKey;size:64"`
	PresetBase string `gorm:"NOT NULL;size:64"`
}

func (*Spec) TableName() string {
	return "specs"
}
