package seeders

const (
	demoOrganization = "Демо организация"
	demoDepartment   = "Основное подразделение"
	demoCheckpoint   = "Главный вход"
	// смещение организации и устройства, секунды
	demoTimezone = 3 * 3600
)

var demoDevices = []struct {
	MQTT string
	Name string
}{
	{MQTT: "DEMO-ENTRY-01", Name: "Турникет 1"},
	{MQTT: "DEMO-ENTRY-02", Name: "Турникет 2"},
}

// сотрудники и их обычные часы прихода/ухода по местному времени
var demoEmployees = []struct {
	LastName   string
	FirstName  string
	Patronymic string
	Arrive     [2]int
	Leave      [2]int
}{
	{LastName: "Иванов", FirstName: "Иван", Patronymic: "Иванович", Arrive: [2]int{8, 55}, Leave: [2]int{18, 5}},
	{LastName: "Петрова", FirstName: "Анна", Patronymic: "Сергеевна", Arrive: [2]int{9, 20}, Leave: [2]int{17, 40}},
	{LastName: "Сидоров", FirstName: "Павел", Patronymic: "Олегович", Arrive: [2]int{8, 30}, Leave: [2]int{19, 0}},
}

const demoDays = 7
