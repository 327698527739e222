package handler

import (
	businessdomain "barbid-go/internal/domain/business"
	jobdomain "barbid-go/internal/domain/job"
	notificationdomain "barbid-go/internal/domain/notification"
	userdomain "barbid-go/internal/domain/user"
	"barbid-go/pkg/logger"
)

type Handlers struct {
	Businesses    *businessdomain.Service
	Jobs          *jobdomain.Service
	Notifications *notificationdomain.Service
	Users         *userdomain.Service
	log           logger.Logger
}

func New(businesses *businessdomain.Service, jobs *jobdomain.Service, notifications *notificationdomain.Service, users *userdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Businesses:    businesses,
		Jobs:          jobs,
		Notifications: notifications,
		Users:         users,
		log:           log,
	}
}
