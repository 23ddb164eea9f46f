package conversation

const (
	LabelConsentAccept  = "Я согласен(а) предоставить данные"
	LabelConsentDecline = "Я не согласен(а)"
	LabelSharePhone     = "Отправить номер телефона"

	privacyPolicy = "Политика конфиденциальности 📜\n\n" +
		"🔒 Сбор данных:\n" +
		"Мы собираем ваш номер телефона для улучшения обслуживания.\n\n" +
		"🔐 Использование данных:\n" +
		"Данные используются только для обслуживания и не передаются третьим лицам.\n\n" +
		"✅ Согласие:\n" +
		"Нажмите 'Я согласен(а)' для продолжения.\n\n" +
		"❌ Отказ:\n" +
		"Нажмите 'Я не согласен(а)' для отказа. Функционал будет ограничен."

	msgAskPhone      = "Спасибо за согласие! Пожалуйста, нажмите на кнопку ниже, чтобы отправить свой номер телефона."
	msgDeclined      = "Вы отказались предоставить номер телефона. Функционал бота будет ограничен!"
	msgConsentNeeded = "Для продолжения регистрации необходимо согласие на предоставление номера телефона."
	msgPhoneNeeded   = "Пожалуйста, нажмите на кнопку ниже, чтобы отправить свой номер телефона."
	msgInvalidPhone  = "Пожалуйста, отправьте корректный номер телефона."
	msgAskName       = "Отлично! Теперь скажите, как вас зовут?"
	msgResumeName    = "Привет! Осталось познакомиться: как вас зовут?"
	msgEmptyName     = "Имя не может быть пустым. Пожалуйста, введите ваше имя."
	msgRegistered    = "Спасибо за регистрацию, %s!"
	msgGreeting      = "Привет, %s! На связи Жук-Навигатор.\n\nЖду твои пожелания по досугу, чтобы предложить варианты 💚"
	msgTryAgain      = "Произошла ошибка. Попробуйте позже."
)
