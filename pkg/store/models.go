package store

import "math"

// NodeRecord is one row of the nodes table.
type NodeRecord struct {
	Idx   uint32 `gorm:"primaryKey;autoIncrement:false"`
	OSMID int64  `gorm:"column:osmid;not null"`
	Lat   float64
	Lon   float64
	X     float64
	Y     float64
}

func (NodeRecord) TableName() string { return "nodes" }

// EdgeRecord is one row of the edges table. Missing values are NULL.
type EdgeRecord struct {
	Idx        uint32 `gorm:"primaryKey;autoIncrement:false"`
	U          uint32 `gorm:"index;not null"`
	V          uint32 `gorm:"not null"`
	Length     float64
	MaxSpeed   *float64 `gorm:"column:maxspeed"`
	SpeedKph   *float64 `gorm:"column:speed_kph"`
	TravelTime *float64
	Highway    string
}

func (EdgeRecord) TableName() string { return "edges" }

// MetaRecord is a key/value row of the graph_meta table.
type MetaRecord struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

func (MetaRecord) TableName() string { return "graph_meta" }

func nullable(col []float64, e int) *float64 {
	if col == nil || math.IsNaN(col[e]) {
		return nil
	}
	v := col[e]
	return &v
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
