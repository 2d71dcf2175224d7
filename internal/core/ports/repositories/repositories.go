package repositories

// RepositoryProvider bundles the repository facades handed to the service layer.
type RepositoryProvider struct {
	User         UserRepositoryFacade
	RefreshToken RefreshTokenRepositoryFacade
}
