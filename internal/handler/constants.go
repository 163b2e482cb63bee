// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteParamSlug is the slug parameter pattern.
	RouteParamSlug = "/{slug}"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"

	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteSignup is the signup route.
	RouteSignup = "/signup"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteContact is the public contact route.
	RouteContact = "/contact"
	// RouteEvents is the public events route.
	RouteEvents = "/events"
	// RouteVideos is the public videos route.
	RouteVideos = "/videos"
	// RouteGallery is the public gallery route.
	RouteGallery = "/gallery"

	// RouteUsers is the users admin route.
	RouteUsers = "/users"
	// RouteRequests is the admin requests route.
	RouteRequests = "/requests"
	// RouteProfile is the profile route.
	RouteProfile = "/profile"
	// RouteServiceTimes is the service times admin route.
	RouteServiceTimes = "/service-times"
	// RouteSettings is the church info admin route.
	RouteSettings = "/settings"
	// RouteAudit is the audit log admin route.
	RouteAudit = "/audit"
	// RouteStream is the admin live event stream route.
	RouteStream = "/stream"
)

const (
	redirectAdmin             = "/admin"
	redirectAdminEvents       = redirectAdmin + RouteEvents
	redirectAdminEventsNew    = redirectAdminEvents + RouteSuffixNew
	redirectAdminVideos       = redirectAdmin + RouteVideos
	redirectAdminVideosNew    = redirectAdminVideos + RouteSuffixNew
	redirectAdminGallery      = redirectAdmin + RouteGallery
	redirectAdminGalleryNew   = redirectAdminGallery + RouteSuffixNew
	redirectAdminUsers        = redirectAdmin + RouteUsers
	redirectAdminRequests     = redirectAdmin + RouteRequests
	redirectAdminProfile      = redirectAdmin + RouteProfile
	redirectAdminServiceTimes = redirectAdmin + RouteServiceTimes
	redirectAdminSettings     = redirectAdmin + RouteSettings
	redirectAdminContact      = redirectAdmin + RouteContact
	redirectLogin             = RouteLogin
	redirectContact           = RouteContact

	redirectAdminEventsID  = redirectAdminEvents + "/%d"
	redirectAdminVideosID  = redirectAdminVideos + "/%d"
	redirectAdminGalleryID = redirectAdminGallery + "/%d"
	redirectAdminContactID = redirectAdminContact + "/%d"
)

// Utility constants used by main.go.
const (
	// UploadsDirPath is the default uploads directory path.
	UploadsDirPath = "./uploads"
	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"
)
