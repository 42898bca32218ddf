package postgres

import "time"

// Configuration and staging records are stored as JSONB documents keyed by
// the lookup columns the receive path queries on. The document column holds
// the full domain object so schema churn in the configuration shape does not
// require a migration.

type processFlowRow struct {
	ID        string    `gorm:"column:id;primaryKey"`
	FlowName  string    `gorm:"column:flow_name;index"`
	Document  string    `gorm:"column:document;type:jsonb"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (processFlowRow) TableName() string { return "process_flows" }

type partnershipRow struct {
	ID            string    `gorm:"column:id;primaryKey"`
	PartnershipID string    `gorm:"column:partnership_id;index"`
	Document      string    `gorm:"column:document;type:jsonb"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (partnershipRow) TableName() string { return "partnerships" }

type stagingRow struct {
	ID            string    `gorm:"column:id;primaryKey"`
	TransactionID string    `gorm:"column:transaction_id;index"`
	State         string    `gorm:"column:state"`
	Document      string    `gorm:"column:document;type:jsonb"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (stagingRow) TableName() string { return "staging_transactions" }

type tenantRow struct {
	TenantID        string    `gorm:"column:tenant_id;primaryKey"`
	StoreURL        string    `gorm:"column:store_url"`
	BlobRoot        string    `gorm:"column:blob_root"`
	TopicConnection string    `gorm:"column:topic_connection"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (tenantRow) TableName() string { return "tenants" }
