package model

import (
	"time"
)

// SourceMySideline 由 MySideline 导入的嘉年华来源标识
const SourceMySideline = "MySideline"

// Carnival 嘉年华（Masters 橄榄球联赛赛事）
// MySideline* 快照字段仅在首次导入时写入，之后只用于跨批次识别同一条记录，用户可编辑的是 Title/Date/Location* 等内容字段。
type Carnival struct {
	ID    uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title string     `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Date  *time.Time `gorm:"column:date;type:timestamp;index" json:"date,omitempty"`

	LocationAddress   string   `gorm:"column:location_address;type:varchar(500)" json:"location_address"`
	LocationSuburb    string   `gorm:"column:location_suburb;type:varchar(100)" json:"location_suburb"`
	LocationPostcode  string   `gorm:"column:location_postcode;type:varchar(10)" json:"location_postcode"`
	LocationLatitude  *float64 `gorm:"column:location_latitude;type:numeric(10,7)" json:"location_latitude,omitempty"`
	LocationLongitude *float64 `gorm:"column:location_longitude;type:numeric(10,7)" json:"location_longitude,omitempty"`
	State             string   `gorm:"column:state;type:varchar(3);index" json:"state"`

	OrganiserContactName  string `gorm:"column:organiser_contact_name;type:varchar(255)" json:"organiser_contact_name"`
	OrganiserContactEmail string `gorm:"column:organiser_contact_email;type:varchar(255)" json:"organiser_contact_email"`
	OrganiserContactPhone string `gorm:"column:organiser_contact_phone;type:varchar(50)" json:"organiser_contact_phone"`
	Description           string `gorm:"column:description;type:text" json:"description"`
	ScheduleDetails       string `gorm:"column:schedule_details;type:text" json:"schedule_details"`
	RegistrationLink      string `gorm:"column:registration_link;type:varchar(500)" json:"registration_link"`
	ClubLogoURL           string `gorm:"column:club_logo_url;type:varchar(500)" json:"club_logo_url"`
	SocialMediaFacebook   string `gorm:"column:social_media_facebook;type:varchar(500)" json:"social_media_facebook"`
	SocialMediaInstagram  string `gorm:"column:social_media_instagram;type:varchar(500)" json:"social_media_instagram"`
	SocialMediaWebsite    string `gorm:"column:social_media_website;type:varchar(500)" json:"social_media_website"`

	MySidelineID      *string    `gorm:"column:mysideline_id;type:varchar(64);uniqueIndex" json:"mysideline_id,omitempty"`
	MySidelineTitle   string     `gorm:"column:mysideline_title;type:varchar(255);index:idx_mysideline_legacy,priority:1" json:"mysideline_title"`
	MySidelineDate    *time.Time `gorm:"column:mysideline_date;type:timestamp;index:idx_mysideline_legacy,priority:2" json:"mysideline_date,omitempty"`
	MySidelineAddress string     `gorm:"column:mysideline_address;type:varchar(500)" json:"mysideline_address"`

	IsActive           bool       `gorm:"column:is_active;type:boolean;not null;index" json:"is_active"`
	IsManuallyEntered  bool       `gorm:"column:is_manually_entered;type:boolean;not null;default:false" json:"is_manually_entered"`
	IsRegistrationOpen bool       `gorm:"column:is_registration_open;type:boolean;not null;default:false" json:"is_registration_open"`
	LastMySidelineSync *time.Time `gorm:"column:last_mysideline_sync;type:timestamp" json:"last_mysideline_sync,omitempty"`
	Source             string     `gorm:"column:source;type:varchar(32)" json:"source"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;autoUpdateTime" json:"updated_at"`
}

func (Carnival) TableName() string { return "carnivals" }
