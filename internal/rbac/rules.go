package rbac

// DefaultPolicy is the experimenter API policy. Participants are anonymous
// and never hold a role.
var DefaultPolicy = Policy{
	"experimenter": {
		"check:view",
		"check:create",
		"results:view",
	},
	"admin": {"*"},
}
