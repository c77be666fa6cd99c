package entity

import "time"

// ImageAnalysis — запись об одном проанализированном снимке листа.
// Создаётся ровно один раз после классификации и больше не меняется.
type ImageAnalysis struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	NodeID        string    `gorm:"size:100" json:"node_id"`
	ImageFilename string    `gorm:"size:256" json:"image_filename"`
	Label         string    `gorm:"size:64" json:"label"`
	InfectedProb  float64   `json:"infected_prob"`         // вероятность заражения 0..1
	Meta          string    `gorm:"type:text" json:"meta"` // сырой вывод классификатора (JSON)
	CreatedAt     time.Time `json:"created_at"`
}

func (ImageAnalysis) TableName() string { return "image_analysis" }

// SprayLog — запись о выполненном опрыскивании.
// Создаётся только при вердикте "spray", по одной на анализ.
type SprayLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	NodeID     string    `gorm:"size:100" json:"node_id"`
	Decision   string    `gorm:"size:32" json:"decision"`
	AmountML   float64   `json:"amount_ml"`
	DurationMS int       `json:"duration_ms"`
	Reason     string    `gorm:"size:256" json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

func (SprayLog) TableName() string { return "spray_logs" }

// SensorReading — показания датчиков узла. Таблица объявлена для
// совместимости схемы, обработка потока датчиков живёт вне этого сервиса.
type SensorReading struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	NodeID       string    `gorm:"size:100" json:"node_id"`
	SoilMoisture float64   `json:"soil_moisture"`
	Temperature  float64   `json:"temperature"`
	Pressure     float64   `json:"pressure"`
	Altitude     float64   `json:"altitude"`
	CreatedAt    time.Time `json:"created_at"`
}

func (SensorReading) TableName() string { return "sensor_readings" }
