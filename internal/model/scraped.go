package model

// ScrapedEvent 采集端产出的原始赛事记录（各字段可能为空，日期为多种格式的字符串）
type ScrapedEvent struct {
	MySidelineID      string `json:"mySidelineId,omitempty" validate:"max=64"`
	MySidelineTitle   string `json:"mySidelineTitle,omitempty" validate:"max=255"`
	MySidelineDate    string `json:"mySidelineDate,omitempty"`
	MySidelineAddress string `json:"mySidelineAddress,omitempty" validate:"max=500"`

	Title             string   `json:"title" validate:"required_without=MySidelineTitle,max=255"`
	Date              string   `json:"date,omitempty"`
	LocationAddress   string   `json:"locationAddress,omitempty" validate:"max=500"`
	LocationSuburb    string   `json:"locationSuburb,omitempty" validate:"max=100"`
	LocationPostcode  string   `json:"locationPostcode,omitempty" validate:"max=10"`
	LocationLatitude  *float64 `json:"locationLatitude,omitempty" validate:"omitempty,latitude"`
	LocationLongitude *float64 `json:"locationLongitude,omitempty" validate:"omitempty,longitude"`
	State             string   `json:"state,omitempty" validate:"max=3"`

	OrganiserContactName  string `json:"organiserContactName,omitempty" validate:"max=255"`
	OrganiserContactEmail string `json:"organiserContactEmail,omitempty" validate:"max=255"`
	OrganiserContactPhone string `json:"organiserContactPhone,omitempty" validate:"max=50"`
	Description           string `json:"description,omitempty"`
	ScheduleDetails       string `json:"scheduleDetails,omitempty"`
	RegistrationLink      string `json:"registrationLink,omitempty" validate:"max=500"`
	ClubLogoURL           string `json:"clubLogoURL,omitempty" validate:"max=500"`
	SocialMediaFacebook   string `json:"socialMediaFacebook,omitempty" validate:"max=500"`
	SocialMediaInstagram  string `json:"socialMediaInstagram,omitempty" validate:"max=500"`
	SocialMediaWebsite    string `json:"socialMediaWebsite,omitempty" validate:"max=500"`
}

// MySidelineSearchResponse MySideline 搜索接口返回
type MySidelineSearchResponse struct {
	Data []MySidelineItem `json:"data"`
}

// MySidelineItem MySideline 搜索结果中的单个组织/赛事条目
type MySidelineItem struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Date        string `json:"date"`      // 展示用日期，如 "27th July 2024"
	StartDate   string `json:"startDate"` // 部分条目为 ISO 时间或 DD/MM/YYYY
	Description string `json:"description"`
	Image       string `json:"image"`
	Venue       struct {
		Name     string   `json:"name"`
		Address  string   `json:"address"`
		Suburb   string   `json:"suburb"`
		State    string   `json:"state"`
		Postcode string   `json:"postcode"`
		Lat      *float64 `json:"lat"`
		Lng      *float64 `json:"lng"`
	} `json:"venue"`
	Contact struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"contact"`
	Registration struct {
		URL string `json:"url"`
	} `json:"registration"`
	Social struct {
		Facebook  string `json:"facebook"`
		Instagram string `json:"instagram"`
		Website   string `json:"website"`
	} `json:"social"`
}
