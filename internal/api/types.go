package api

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type ReserveRequest struct {
	Date    string `json:"date"`
	Vaccine string `json:"vaccine"`
}

type ReserveResponse struct {
	AppointmentID int64  `json:"appointment_id"`
	Caregiver     string `json:"caregiver"`
}

type PublishAvailabilityRequest struct {
	Date string `json:"date"`
}

type AddDosesRequest struct {
	Name  string `json:"name"`
	Doses int    `json:"doses"`
}

type VaccineStock struct {
	Name  string `json:"name"`
	Doses int    `json:"doses"`
}

type ScheduleResponse struct {
	Date       string         `json:"date"`
	Caregivers []string       `json:"caregivers"`
	Vaccines   []VaccineStock `json:"vaccines"`
}

type AppointmentResponse struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`
	Caregiver string `json:"caregiver"`
	Patient   string `json:"patient"`
	Vaccine   string `json:"vaccine"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
