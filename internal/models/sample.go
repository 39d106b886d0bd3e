package models

// SampleUsers is the baked-in fallback profile set used when the profile
// lookup fails during repair list resolution. The list fetch must still
// succeed with placeholder requester/assignee data.
var SampleUsers = []User{
	{ID: "user1", Username: "staff1", Name: "พนักงาน ทั่วไป", Role: RoleStaff, Active: true},
	{ID: "user2", Username: "tech1", Name: "ช่าง หนึ่ง", Role: RoleTechnician, Active: true},
	{ID: "user3", Username: "tech2", Name: "ช่าง สอง", Role: RoleTechnician, Active: true},
	{ID: "user4", Username: "manager1", Name: "ผู้จัดการ ฝ่ายซ่อมบำรุง", Role: RoleManager, Active: true},
	{ID: "user5", Username: "admin1", Name: "ผู้ดูแล ระบบ", Role: RoleAdmin, Active: true},
}

// SampleUserMap keys SampleUsers by id.
func SampleUserMap() map[string]User {
	m := make(map[string]User, len(SampleUsers))
	for _, u := range SampleUsers {
		m[u.ID] = u
	}
	return m
}
