package models

// Permission abbreviations. The abbreviation is the stable authorization key
// used both in storage and inside access-token claims.
const (
	CreatePosts = "p.c"
	UpdatePosts = "p.u"
	DeletePosts = "p.d"
	ReadPosts   = "p.r"

	CreateUsers = "u.c"
	UpdateUsers = "u.u"
	DeleteUsers = "u.d"
	ReadUsers   = "u.r"

	CreateRoles = "r.c"
	UpdateRoles = "r.u"
	DeleteRoles = "r.d"
	ReadRoles   = "r.r"

	CreateCategories = "c.c"
	UpdateCategories = "c.u"
	ReadCategories   = "c.r"

	ReadStatistics = "s.r"
)

type PermissionOption struct {
	Abbreviation string
	Description  string
}

// PermissionOptions lists every permission the platform knows about, in the
// order they are seeded.
func PermissionOptions() []PermissionOption {
	return []PermissionOption{
		{CreatePosts, "Create Posts"},
		{UpdatePosts, "Update Posts"},
		{DeletePosts, "Delete Posts"},
		{ReadPosts, "Read Posts"},

		{CreateUsers, "Create Users"},
		{UpdateUsers, "Update Users"},
		{DeleteUsers, "Delete Users"},
		{ReadUsers, "Read Users"},

		{CreateRoles, "Create Roles"},
		{UpdateRoles, "Update Roles"},
		{DeleteRoles, "Delete Roles"},
		{ReadRoles, "Read Roles"},

		{CreateCategories, "Create Categories"},
		{UpdateCategories, "Update Categories"},
		{ReadCategories, "Read Categories"},

		{ReadStatistics, "Read Statistics"},
	}
}
