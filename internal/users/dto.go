package users

// UserDTO is the public shape of an account. Blob references are exposed as
// ids the client resolves against the file retrieval endpoint.
type UserDTO struct {
	ID          string     `json:"id"`
	FullName    string     `json:"fullname"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	Role        string     `json:"role"`
	Profile     ProfileDTO `json:"profile"`
}

type ProfileDTO struct {
	Bio                string   `json:"bio"`
	Skills             []string `json:"skills"`
	ProfilePhoto       string   `json:"profilePhoto"`
	Resume             string   `json:"resume"`
	ResumeOriginalName string   `json:"resumeOriginalName"`
}

// UserResponse is the `{message, success, user}` envelope the client expects.
type UserResponse struct {
	Message string  `json:"message"`
	Success bool    `json:"success"`
	User    UserDTO `json:"user"`
}

func ToDTO(user User) UserDTO {
	skills := user.Profile.Skills
	if skills == nil {
		skills = []string{}
	}
	return UserDTO{
		ID:          user.ID,
		FullName:    user.FullName,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Role:        user.Role,
		Profile: ProfileDTO{
			Bio:                user.Profile.Bio,
			Skills:             skills,
			ProfilePhoto:       user.Profile.ProfilePhotoID,
			Resume:             user.Profile.ResumeID,
			ResumeOriginalName: user.Profile.ResumeOriginalName,
		},
	}
}
