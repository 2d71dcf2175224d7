package services

// ServiceContainer bundles the service facades handed to the handlers.
type ServiceContainer struct {
	Auth  AuthSvcFacade
	Token TokenSvcFacade
	User  UserSvcFacade
}
