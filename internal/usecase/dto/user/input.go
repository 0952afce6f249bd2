package userdto

type RegisterUserInput struct {
	UserID        int64
	Username      string
	FirstName     string
	SponsorUserID *int64
}

type EnsureHouseInput struct {
	UserID    int64
	Username  string
	FirstName string
}
