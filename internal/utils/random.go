package utils

import (
	"fmt"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"

	"github.com/MBkkt/TaskManager/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "庆",
	"建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

// GenerateRandomChineseName 返回随机的姓和名
func GenerateRandomChineseName() (surname string, givenName string) {
	surname = commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1

	for i := 0; i < nameLength; i++ {
		givenName += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname, givenName
}

var roles = []domain.Role{
	domain.RoleWorker,
	domain.RoleAdmin,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

// GenerateLoginFromChineseName 把中文姓名转成带随机数字后缀的拼音登录名
func GenerateLoginFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	login := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		login += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		login += string(digits[rand.Intn(len(digits))])
	}

	return login
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	surname, givenName := GenerateRandomChineseName()
	login := GenerateLoginFromChineseName(surname + givenName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Login:        login,
		Email:        login + "@" + emailDomainName,
		FirstName:    givenName,
		LastName:     surname,
		Role:         GenerateRandomRole(),
		PasswordHash: string(passwordHash),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

func GenerateRandomTask(authorID int64) *domain.Task {
	return &domain.Task{
		Title:       "任务" + GenerateRandomID(3, 3),
		Description: "任务描述" + GenerateRandomID(20, 10),
		AuthorID:    authorID,
	}
}
