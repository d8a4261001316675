package domain

// Setting keys.
const (
	SettingInstallSecret = "db_hash"
	SettingTitle         = "title"
)

type SetupData struct {
	Name     string
	Email    string
	Password string
	Title    string
}
