package auth

import apperrors "coinhub/internal/errors"

// RequireOwner fails with a ForbiddenError unless callerID owns the resource.
func RequireOwner(callerID, ownerID uint, resource string) error {
	if callerID == 0 || callerID != ownerID {
		return apperrors.NewForbiddenError(resource)
	}
	return nil
}

// RequireSelf guards routes that name a user id, e.g. /accounts/user/:userId.
func RequireSelf(callerID, targetUserID uint, resource string) error {
	return RequireOwner(callerID, targetUserID, resource)
}
